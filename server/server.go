// Package server exposes experiments over HTTP. Every route is scoped by a tenant, which selects both the session
// and the artifact slot the request works with.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/artifact"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/logger"
	"github.com/hscells/autolearn/output"
	"github.com/hscells/autolearn/pipeline"
	"github.com/hscells/autolearn/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// MIMETextCSV is the content type of datasets sent to and returned from the server.
	MIMETextCSV = "text/csv"
	// HeaderTask names the task family of an artifact in artifact responses.
	HeaderTask = "X-Autolearn-Task"
)

// Server serves the experiments of a pipeline.
type Server struct {
	*echo.Echo

	pipeline pipeline.Pipeline
	store    *artifact.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	log *zap.Logger
}

type sessionResponse struct {
	Tenant  string               `json:"tenant"`
	Task    autolearn.TaskFamily `json:"task"`
	Target  string               `json:"target,omitempty"`
	Rows    int                  `json:"rows"`
	Columns []string             `json:"columns"`
	State   string               `json:"state"`
}

type trainResponse struct {
	Tenant      string               `json:"tenant"`
	RunID       string               `json:"run_id"`
	Task        autolearn.TaskFamily `json:"task"`
	Winner      string               `json:"winner"`
	Leaderboard json.RawMessage      `json:"leaderboard"`
}

// New creates a server for a pipeline. The store must be the store the pipeline trains into.
func New(pl pipeline.Pipeline, store *artifact.Store, log *zap.Logger) *Server {
	s := &Server{
		Echo:     echo.New(),
		pipeline: pl,
		store:    store,
		locks:    make(map[string]*sync.Mutex),
		log:      logger.OrNop(log),
	}
	s.HideBanner = true
	s.HidePort = true
	s.HTTPErrorHandler = s.handleError
	s.Use(s.logRequests)

	api := s.Group("/api/sessions/:tenant", s.tenant)
	api.POST("", s.begin)
	api.POST("/train", s.train)
	api.POST("/predict", s.predict)
	api.GET("/artifact", s.artifact)
	api.HEAD("/artifact", s.artifact)
	return s
}

// Shutdown stops the server, waiting at most grace for requests in flight.
func (s *Server) Shutdown(grace time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.Echo.Shutdown(ctx)
}

// lock serialises training and prediction for a tenant.
func (s *Server) lock(tenant string) func() {
	s.mu.Lock()
	l, ok := s.locks[tenant]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tenant] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Status maps an error to the HTTP status it is reported with.
func Status(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, autolearn.ErrInvalidSession), errors.Is(err, artifact.ErrInvalidScope):
		return http.StatusBadRequest
	case errors.Is(err, autolearn.ErrNoActiveSession), errors.Is(err, autolearn.ErrArtifactTaskMismatch),
		errors.Is(err, session.ErrTransition):
		return http.StatusConflict
	case errors.Is(err, autolearn.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, autolearn.ErrTrainingFailure), errors.Is(err, autolearn.ErrPrediction):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		s.log.Error("error after response was written", zap.String("path", c.Path()), zap.Error(err))
		return
	}
	code := Status(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": message})
	}
	if err != nil {
		s.log.Error("could not write error response", zap.Error(err))
	}
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		if err != nil {
			status = Status(err)
		}
		s.log.Info("request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return err
	}
}

// tenant rejects tenant keys that cannot name an artifact scope.
func (s *Server) tenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := artifact.ValidName(c.Param("tenant")); err != nil {
			return err
		}
		return next(c)
	}
}

func (s *Server) begin(c echo.Context) error {
	tenant := c.Param("tenant")
	task, err := autolearn.ParseTaskFamily(c.QueryParam("task"))
	if err != nil {
		return errors.Wrap(autolearn.ErrInvalidSession, err.Error())
	}
	data, err := dataset.Read(c.Request().Body)
	if err != nil {
		return errors.Wrap(autolearn.ErrInvalidSession, err.Error())
	}

	unlock := s.lock(tenant)
	defer unlock()
	sess, err := s.pipeline.Begin(tenant, data, task, c.QueryParam("target"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{
		Tenant:  tenant,
		Task:    sess.Task,
		Target:  sess.Target,
		Rows:    sess.Data.Len(),
		Columns: sess.Data.Columns(),
		State:   sess.State().String(),
	})
}

func (s *Server) train(c echo.Context) error {
	tenant := c.Param("tenant")
	unlock := s.lock(tenant)
	defer unlock()

	result, err := s.pipeline.Train(tenant)
	if err != nil {
		return err
	}
	report := result.Report
	leaderboard, err := output.JsonLeaderboardFormatter(report.Outcome.Leaderboard, report.Outcome.WinnerName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trainResponse{
		Tenant:      tenant,
		RunID:       report.RunID,
		Task:        report.Task,
		Winner:      report.Outcome.WinnerName,
		Leaderboard: json.RawMessage(leaderboard),
	})
}

func (s *Server) predict(c echo.Context) error {
	tenant := c.Param("tenant")
	data, err := dataset.Read(c.Request().Body)
	if err != nil {
		return errors.Wrap(autolearn.ErrPrediction, err.Error())
	}

	unlock := s.lock(tenant)
	defer unlock()
	predictions, err := s.pipeline.Predict(tenant, data)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, MIMETextCSV)
	c.Response().WriteHeader(http.StatusOK)
	return predictions.Write(c.Response())
}

func (s *Server) artifact(c echo.Context) error {
	tenant := c.Param("tenant")
	store, err := s.store.Scope(tenant)
	if err != nil {
		return err
	}

	unlock := s.lock(tenant)
	defer unlock()
	info, err := store.Info()
	if err != nil {
		return err
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, echo.MIMEOctetStream)
	h.Set(echo.HeaderContentDisposition, `attachment; filename="`+tenant+`.model"`)
	h.Set(HeaderTask, info.Task.String())
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}
	c.Response().WriteHeader(http.StatusOK)
	_, err = store.Export(c.Response())
	return err
}
