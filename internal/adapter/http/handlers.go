package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/session"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/viewmodel"
	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type reportsResponse struct {
	Reports []domain.EmergencyReport `json:"reports"`
	Total   int                      `json:"total"`
}

type sessionResponse struct {
	ID string `json:"id"`
	session.Snapshot
}

func (s *Server) listReports(c *gin.Context) {
	reports := s.deps.Reports.List()
	c.JSON(http.StatusOK, reportsResponse{Reports: reports, Total: len(reports)})
}

func (s *Server) getReport(c *gin.Context) {
	report, err := s.deps.Reports.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"status\": \"...\"}"})
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.writeError(c, err)
		return
	}

	report, err := s.deps.Reports.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) getDetail(c *gin.Context) {
	view, err := s.deps.Details.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getBoard(c *gin.Context) {
	board, err := viewmodel.NewBoard(s.deps.Reports.List(), s.deps.Timezone)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) openSession(c *gin.Context) {
	sess, err := s.deps.Sessions.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{ID: sess.ID(), Snapshot: sess.Snapshot()})
}

func (s *Server) sessionBoard(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: sess.ID(), Snapshot: sess.Snapshot()})
}

func (s *Server) refreshSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if _, err := sess.Refresh(); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: sess.ID(), Snapshot: sess.Snapshot()})
}

func (s *Server) navigate(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	view, err := sess.Navigate(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, view)
}

func (s *Server) sessionDetail(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	view, ok := sess.Detail()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report selected"})
		return
	}
	code := http.StatusOK
	if view.State == viewmodel.StateNotFound {
		code = http.StatusNotFound
	}
	c.JSON(code, view)
}

func (s *Server) closeSession(c *gin.Context) {
	if err := s.deps.Sessions.Close(c.Request.Context(), c.Param("sid")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.deps.Sessions.Get(c.Param("sid"))
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return sess, true
}

// writeError maps domain and session errors onto status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "state": viewmodel.StateNotFound})
	case errors.Is(err, domain.ErrInvalidReport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "route", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
