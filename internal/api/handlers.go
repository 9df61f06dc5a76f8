package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drivemeta/internal/meta"
)

type extractRequest struct {
	Folder         string `json:"folder"`
	IncludeTrashed bool   `json:"include_trashed"`
	Workers        int    `json:"workers"`
}

func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) StartExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	jobID, err := s.app.StartExtraction(c.Request.Context(), req.Folder, req.IncludeTrashed, req.Workers)
	if err != nil {
		var stateErr *meta.InvalidStateError
		if errors.As(err, &stateErr) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func (s *Server) GetProgress(c *gin.Context) {
	snap := s.app.Controller().Progress()
	c.JSON(http.StatusOK, snapshotBody(snap))
}

func (s *Server) PauseJob(c *gin.Context) {
	s.control(c, s.app.Controller().Pause)
}

func (s *Server) ResumeJob(c *gin.Context) {
	s.control(c, s.app.Controller().Resume)
}

func (s *Server) StopJob(c *gin.Context) {
	s.control(c, s.app.Controller().Stop)
}

// control runs a state transition and maps illegal-transition errors to 409.
func (s *Server) control(c *gin.Context, fn func() error) {
	if err := fn(); err != nil {
		var stateErr *meta.InvalidStateError
		if errors.As(err, &stateErr) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotBody(s.app.Controller().Progress()))
}

func (s *Server) GetResults(c *gin.Context) {
	records, fingerprint, err := s.app.Results()
	if err != nil {
		var stateErr *meta.InvalidStateError
		if errors.As(err, &stateErr) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_count":           len(records),
		"forensic_hash_sha256": fingerprint,
		"files":                records,
	})
}

func (s *Server) ListRuns(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}

	runs, err := s.app.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func snapshotBody(snap meta.Snapshot) gin.H {
	return gin.H{
		"job_id":      snap.JobID,
		"status":      string(snap.Status),
		"phase":       snap.Phase,
		"message":     snap.Message,
		"progress":    snap.Progress,
		"total":       snap.Total,
		"failures":    snap.Failures,
		"fingerprint": snap.Fingerprint,
		"error":       snap.ErrDetail,
		"elapsed_sec": snap.Elapsed.Seconds(),
	}
}
