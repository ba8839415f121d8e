package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleCreateChannel(c *gin.Context) {
	var input service.CreateChannelInput
	if !s.bindJSON(c, &input) {
		return
	}
	channel, err := s.services.Chat.CreateChannel(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (s *Server) handleListChannels(c *gin.Context) {
	channels, err := s.services.Chat.ListChannels(c.Request.Context(), authContext(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (s *Server) handlePostMessage(c *gin.Context) {
	var input service.PostMessageInput
	if !s.bindJSON(c, &input) {
		return
	}
	message, err := s.services.Chat.PostMessage(c.Request.Context(), authContext(c), c.Param("id"), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (s *Server) handleListMessages(c *gin.Context) {
	messages, err := s.services.Chat.ListMessages(c.Request.Context(), authContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
