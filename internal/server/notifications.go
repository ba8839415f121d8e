package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleListNotifications(c *gin.Context) {
	notifications, err := s.services.Notifications.List(c.Request.Context(), authContext(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleMarkNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if err := s.services.Notifications.MarkRead(c.Request.Context(), authContext(c), req.IDs); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePushCalendarEvent(c *gin.Context) {
	var input service.PushEventInput
	if !s.bindJSON(c, &input) {
		return
	}
	if err := s.services.Calendar.Push(c.Request.Context(), authContext(c), input); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
