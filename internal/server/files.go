package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleSignUpload(c *gin.Context) {
	var input service.SignUploadInput
	if !s.bindJSON(c, &input) {
		return
	}
	result, err := s.services.Files.SignUpload(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleListFiles(c *gin.Context) {
	filter := service.FileListFilter{}
	if value := c.Query("clientId"); value != "" {
		filter.ClientID = &value
	}
	if value := c.Query("projectId"); value != "" {
		filter.ProjectID = &value
	}
	files, err := s.services.Files.List(c.Request.Context(), authContext(c), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	if err := s.services.Files.Delete(c.Request.Context(), authContext(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
