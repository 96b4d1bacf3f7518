package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/blobrelay/internal/metrics"
	"github.com/roach88/blobrelay/internal/record"
)

// storeRequest is the body of POST /api/records.
type storeRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) metrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	c.Status(http.StatusOK)
	metrics.WritePrometheus(c.Writer)
}

func (s *Server) storeRecord(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.bridge.Store(c.Request.Context(), req.Value); err != nil {
		if errors.Is(err, record.ErrInvalidValue) {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "stored"})
}

func (s *Server) fetchAll(c *gin.Context) {
	recs, err := s.bridge.FetchAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) relay(c *gin.Context) {
	if err := s.bridge.Relay(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "relayed"})
}

// events streams relay events to one host subscriber until it leaves.
func (s *Server) events(c *gin.Context) {
	id, ch, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Subscriber-Id", id.String())
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
