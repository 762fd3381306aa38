package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"fuel-planner/internal/app"
	"fuel-planner/internal/metrics"
	"fuel-planner/internal/schedule"
)

const exportFilename = "fuel-plan.ics"

// POST /api/schedule/import
// Accepts a multipart "file" field or the calendar as the raw body.
func (s *Server) handleImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				s.fail(c, &http.MaxBytesError{Limit: s.opts.MaxUploadBytes})
				return
			}
			s.badRequest(c, fmt.Errorf("a calendar file is required: %w", err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			s.fail(c, err)
			return
		}
		defer f.Close()
		r = f
	}

	blocks, err := s.app.ImportICS(r)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": blocks})
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// GET /api/calendar/google/auth
func (s *Server) handleGoogleAuth(c *gin.Context) {
	url, err := s.app.GoogleAuthURL()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": url})
}

// GET /oauth2callback
// The token is handed back to the client, which sends it with the import.
func (s *Server) handleGoogleCallback(c *gin.Context) {
	if msg := c.Query("error"); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization was not granted: " + msg})
		return
	}
	token, err := s.app.GoogleExchange(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type googleImportRequest struct {
	Token      *oauth2.Token `json:"token"`
	CalendarID string        `json:"calendarId"`
	From       time.Time     `json:"from"`
	To         time.Time     `json:"to"`
}

// POST /api/schedule/import/google
func (s *Server) handleImportGoogle(c *gin.Context) {
	var req googleImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	blocks, err := s.app.ImportGoogle(c.Request.Context(), req.Token, req.CalendarID, req.From, req.To)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": blocks})
}

// GET /api/dining/locations?favorite=..&avoid=..
func (s *Server) handleDiningLocations(c *gin.Context) {
	locs := s.app.DiningLocations(splitList(c.QueryArray("favorite")), splitList(c.QueryArray("avoid")))
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GET /api/preferences/defaults
func (s *Server) handlePreferenceDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.PreferenceDefaults())
}

// POST /api/plan/generate
func (s *Server) handleGenerate(c *gin.Context) {
	var in app.GenerateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}
	res, err := s.app.GeneratePlan(c.Request.Context(), in)
	if err != nil {
		s.failPlan(c, res, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type eventsRequest struct {
	Classes []schedule.ClassBlock     `json:"classes"`
	Events  []schedule.ScheduledEvent `json:"events"`
}

// POST /api/plan/export
func (s *Server) handleExport(c *gin.Context) {
	var req eventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	ics, err := s.app.ExportICS(req.Events)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// POST /api/schedule/render?view=list|grid
func (s *Server) handleRender(c *gin.Context) {
	view, err := app.ParseView(c.Query("view"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req eventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	out, err := s.app.Render(view, req.Classes, req.Events)
	if noSchedule(err) {
		c.JSON(http.StatusOK, gin.H{"empty": true, "view": view})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/metrics/usage?days=7
func (s *Server) handleUsage(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a number between 1 and 365"})
		return
	}
	usage, err := s.app.Usage(c.Request.Context(), days)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "usage": usage})
}

// GET /healthz
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": s.opts.Provider,
		"timezone": s.app.Location().String(),
		"system":   metrics.Snapshot(s.opts.MetricsDBPath),
	})
}
