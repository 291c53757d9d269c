package dataset

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrLineBreak is returned when writing a cell containing a CRLF line break. CSV readers turn it into a bare LF, so
// the cell could not be read back as it was written.
var ErrLineBreak = errors.New("cell contains a CRLF line break")

// Read parses a CSV document with a header row into a dataset. Cells are kept verbatim.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrEmpty, "csv has no header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read csv header")
	}
	cr.FieldsPerRecord = len(header)

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not read csv row %d", len(rows)+1)
		}
		rows = append(rows, record)
	}
	return New(header, rows)
}

// Write outputs the dataset as CSV with a header row and no index column.
func (d *Dataset) Write(w io.Writer) error {
	for i, row := range d.rows {
		for j, cell := range row {
			if strings.Contains(cell, "\r\n") {
				return errors.Wrapf(ErrLineBreak, "row %d column %q", i+1, d.columns[j])
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := writeRecord(w, cw, d.columns); err != nil {
		return err
	}
	for _, row := range d.rows {
		if err := writeRecord(w, cw, row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeRecord writes a record. A record of one empty field is written quoted; unquoted it would be a blank line,
// which readers skip.
func writeRecord(w io.Writer, cw *csv.Writer, record []string) error {
	if len(record) != 1 || len(record[0]) > 0 {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}
