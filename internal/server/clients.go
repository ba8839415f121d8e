package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleCreateClient(c *gin.Context) {
	var input service.CreateClientInput
	if !s.bindJSON(c, &input) {
		return
	}
	client, err := s.services.Clients.Create(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (s *Server) handleListClients(c *gin.Context) {
	clients, err := s.services.Clients.List(c.Request.Context(), authContext(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (s *Server) handleGetClient(c *gin.Context) {
	client, err := s.services.Clients.Get(c.Request.Context(), authContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) handleUpdateClient(c *gin.Context) {
	var input service.UpdateClientInput
	if !s.bindJSON(c, &input) {
		return
	}
	client, err := s.services.Clients.Update(c.Request.Context(), authContext(c), c.Param("id"), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) handleDeleteClient(c *gin.Context) {
	if err := s.services.Clients.Delete(c.Request.Context(), authContext(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addContactRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (s *Server) handleAddContact(c *gin.Context) {
	var req addContactRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if err := s.services.Clients.AddContact(c.Request.Context(), authContext(c), c.Param("id"), req.UserID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
