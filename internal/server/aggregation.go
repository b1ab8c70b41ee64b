package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/aggregation/preview"
)

type batchSumsRequest struct {
	Requests []aggdomain.SumsRequest `json:"requests"`
}

func (s *Server) GetDailySums(c *gin.Context) {
	var req aggdomain.SumsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sums, err := s.aggSvc.ComputeDailySums(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sums)
}

func (s *Server) GetDailySumsBatch(c *gin.Context) {
	var req batchSumsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	results, err := s.aggSvc.ComputeDailySumsBatch(c.Request.Context(), req.Requests)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// validationResponse is the wire shape of the standalone completion
// check. The monthly submission gate reports the same result under an
// errorMessage key instead; both shapes are load-bearing for clients.
type validationResponse struct {
	IsValid       bool   `json:"isValid"`
	Message       string `json:"message,omitempty"`
	CompletedDays int    `json:"completedDays"`
	TotalDays     int    `json:"totalDays"`
}

func (s *Server) ValidateDailyCompletion(c *gin.Context) {
	var req aggdomain.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.aggSvc.ValidateDailyCompletion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, validationResponse{
		IsValid:       result.IsValid,
		Message:       result.ErrorMessage,
		CompletedDays: result.CompletedDays,
		TotalDays:     result.TotalDays,
	})
}

// StreamDailySums pushes recomputed monthly sums over server-sent events
// while the client holds the connection open, so entry forms can show a
// live running total without polling.
func (s *Server) StreamDailySums(c *gin.Context) {
	if s.previewHub == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req aggdomain.SumsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	updates, err := s.previewHub.Subscribe(ctx, req, preview.DefaultInterval)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := writeSumsUpdate(writer, update); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSumsUpdate(w io.Writer, update preview.Update) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
