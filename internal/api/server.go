// Package api exposes the board over HTTP for the ranking consumer.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/ai"
	"github.com/spigell/tradematch/internal/board"
	"github.com/spigell/tradematch/internal/identity"
	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
)

const (
	callerKey = "caller"
	maxLimit  = 100
)

// Board is the subset of the board service the API serves.
type Board interface {
	Counts() (jobs, profiles int)
	SearchJobs(ctx context.Context, query string) []model.Job
	Job(ctx context.Context, id string) (model.Job, error)
	EmployerJobs(ctx context.Context, caller model.Caller) ([]model.Job, error)
	PostJob(ctx context.Context, caller model.Caller, job model.Job) (model.Job, error)
	UpdateJobStatus(ctx context.Context, caller model.Caller, id string, status model.JobStatus) (model.Job, error)
	DeleteJob(ctx context.Context, caller model.Caller, id string) error
	SaveProfile(ctx context.Context, caller model.Caller, profile model.WorkerProfile) (model.WorkerProfile, error)
	Profile(ctx context.Context, caller model.Caller) (model.WorkerProfile, error)
	EmployerCandidates(ctx context.Context, caller model.Caller, jobID string, opts board.RankOptions) (model.Job, []matching.MatchResult, error)
	DraftJob(ctx context.Context, caller model.Caller, title, company string) (*ai.JobDraft, error)
}

// Pinger reports whether the storage behind the board answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusRequest is the body of PATCH /api/jobs/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// DraftRequest is the body of POST /api/jobs/draft.
type DraftRequest struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// CandidatesResponse is the body of GET /api/jobs/:id/candidates.
type CandidatesResponse struct {
	Job     model.Job              `json:"job"`
	Results []matching.MatchResult `json:"results"`
}

type server struct {
	board    Board
	resolver identity.Resolver
	pinger   Pinger
	logger   *zap.Logger
}

// NewHandler builds the gin engine. pinger may be nil.
func NewHandler(b Board, resolver identity.Resolver, pinger Pinger, log *zap.Logger) http.Handler {
	s := &server{
		board:    b,
		resolver: resolver,
		pinger:   pinger,
		logger:   logger.WithFields(log, zap.String("component", "api")),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/health", s.health)

	public := r.Group("/api")
	public.GET("/jobs", s.searchJobs)

	authed := r.Group("/api", s.authenticate())
	authed.GET("/employer/jobs", s.employerJobs)
	authed.POST("/jobs", s.postJob)
	authed.POST("/jobs/draft", s.draftJob)
	authed.GET("/jobs/:id/candidates", s.candidates)
	authed.PATCH("/jobs/:id/status", s.updateStatus)
	authed.DELETE("/jobs/:id", s.deleteJob)
	authed.GET("/profile", s.profile)
	authed.PUT("/profile", s.saveProfile)

	return r
}

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			token = ""
		}

		caller, err := s.resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

func callerFrom(c *gin.Context) model.Caller {
	caller, _ := c.MustGet(callerKey).(model.Caller)
	return caller
}

func (s *server) health(c *gin.Context) {
	jobs, profiles := s.board.Counts()
	body := gin.H{"status": "ok", "jobs": jobs, "worker_profiles": profiles}

	if s.pinger != nil {
		if err := s.pinger.Ping(c.Request.Context()); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *server) searchJobs(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.SearchJobs(c.Request.Context(), c.Query("q")))
}

func (s *server) draftJob(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, model.Invalid("invalid payload: %v", err))
		return
	}

	draft, err := s.board.DraftJob(c.Request.Context(), callerFrom(c), req.Title, req.Company)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (s *server) candidates(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	explain, _ := strconv.ParseBool(c.DefaultQuery("explain", "false"))

	opts := board.RankOptions{Limit: limit, Explain: explain}
	job, results, err := s.board.EmployerCandidates(c.Request.Context(), callerFrom(c), c.Param("id"), opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CandidatesResponse{Job: job, Results: results})
}

func (s *server) employerJobs(c *gin.Context) {
	jobs, err := s.board.EmployerJobs(c.Request.Context(), callerFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *server) postJob(c *gin.Context) {
	var job model.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		s.writeError(c, model.Invalid("invalid payload: %v", err))
		return
	}

	stored, err := s.board.PostJob(c.Request.Context(), callerFrom(c), job)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (s *server) updateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, model.Invalid("invalid payload: %v", err))
		return
	}

	job, err := s.board.UpdateJobStatus(c.Request.Context(), callerFrom(c), c.Param("id"), model.JobStatus(req.Status))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *server) deleteJob(c *gin.Context) {
	if err := s.board.DeleteJob(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) profile(c *gin.Context) {
	profile, err := s.board.Profile(c.Request.Context(), callerFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *server) saveProfile(c *gin.Context) {
	var profile model.WorkerProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.writeError(c, model.Invalid("invalid payload: %v", err))
		return
	}

	stored, err := s.board.SaveProfile(c.Request.Context(), callerFrom(c), profile)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (s *server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseLimit reads the limit query parameter. Empty means the configured default.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, model.Invalid("limit must be a positive integer, got %q", raw)
	}
	if v > maxLimit {
		v = maxLimit
	}
	return v, nil
}
