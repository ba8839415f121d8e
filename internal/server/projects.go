package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleCreateProject(c *gin.Context) {
	var input service.CreateProjectInput
	if !s.bindJSON(c, &input) {
		return
	}
	project, err := s.services.Projects.Create(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) handleListProjects(c *gin.Context) {
	var clientID *string
	if value := c.Query("clientId"); value != "" {
		clientID = &value
	}
	projects, err := s.services.Projects.List(c.Request.Context(), authContext(c), clientID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.services.Projects.Get(c.Request.Context(), authContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	var input service.UpdateProjectInput
	if !s.bindJSON(c, &input) {
		return
	}
	project, err := s.services.Projects.Update(c.Request.Context(), authContext(c), c.Param("id"), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.services.Projects.Delete(c.Request.Context(), authContext(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req addMemberRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if err := s.services.Projects.AddMember(c.Request.Context(), authContext(c), c.Param("id"), req.UserID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
