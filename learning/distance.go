package learning

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// points copies the rows of a matrix.
func points(x mat.Matrix) [][]float64 {
	r, c := x.Dims()
	p := make([][]float64, r)
	for i := range p {
		p[i] = make([]float64, c)
		for j := range p[i] {
			p[i][j] = x.At(i, j)
		}
	}
	return p
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// nearest returns the index of the centre closest to p. Ties go to the first centre.
func nearest(p []float64, centres [][]float64) int {
	best, idx := -1.0, 0
	for i, c := range centres {
		if d := sqDist(p, c); best < 0 || d < best {
			best, idx = d, i
		}
	}
	return idx
}

// means computes the mean of the rows assigned to each of k labels. Labels with no rows keep the previous mean.
func means(p [][]float64, labels []int, k int, previous [][]float64) [][]float64 {
	dim := len(p[0])
	m := make([][]float64, k)
	n := make([]float64, k)
	for c := range m {
		m[c] = make([]float64, dim)
	}
	for i, l := range labels {
		floats.Add(m[l], p[i])
		n[l]++
	}
	for c := range m {
		if n[c] == 0 {
			if previous != nil {
				copy(m[c], previous[c])
			}
			continue
		}
		floats.Scale(1/n[c], m[c])
	}
	return m
}
