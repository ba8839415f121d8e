package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleCreateFeedback(c *gin.Context) {
	var input service.CreateFeedbackInput
	if !s.bindJSON(c, &input) {
		return
	}
	feedback, err := s.services.Feedback.Create(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (s *Server) handleSearchFeedback(c *gin.Context) {
	items, err := s.services.Feedback.Search(c.Request.Context(), authContext(c),
		c.Query("targetType"), c.Query("targetId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": items})
}
