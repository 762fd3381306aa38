package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fuel-planner/internal/calendar"
	"fuel-planner/internal/planner"
	"fuel-planner/internal/render"
	"fuel-planner/internal/shared"
)

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, shared.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrParse), errors.Is(err, shared.ErrExport), errors.Is(err, calendar.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrResponseFormat):
		return http.StatusBadGateway
	default:
		// ErrConfiguration included.
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": message}. Errors outside the taxonomy are
// logged and replaced by a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError && shared.KindOf(err) == "internal" {
		msg = "internal server error"
	}
	if status == http.StatusRequestEntityTooLarge {
		msg = "upload is too large"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) failPlan(c *gin.Context, res planner.PlanResult, err error) {
	if errors.Is(err, shared.ErrValidation) && len(res.Violations) > 0 {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "violations": res.Violations})
		return
	}
	s.fail(c, err)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// noSchedule reports whether err means there is nothing to show, which is
// an empty state rather than a failure.
func noSchedule(err error) bool {
	return errors.Is(err, render.ErrNoSchedule)
}
