package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleRegister(c *gin.Context) {
	var input service.RegisterInput
	if !s.bindJSON(c, &input) {
		return
	}
	result, err := s.services.Auth.Register(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !s.bindJSON(c, &req) {
		return
	}
	result, err := s.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if !s.bindJSON(c, &req) {
		return
	}
	tokens, err := s.services.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.services.Auth.Me(c.Request.Context(), authContext(c).UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
