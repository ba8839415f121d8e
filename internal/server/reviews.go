package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleSubmitReview(c *gin.Context) {
	var input service.SubmitReviewInput
	if !s.bindJSON(c, &input) {
		return
	}
	review, err := s.services.Reviews.Submit(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (s *Server) handleGetReview(c *gin.Context) {
	review, err := s.services.Reviews.Get(c.Request.Context(), authContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (s *Server) handleDecideReview(c *gin.Context) {
	var input service.DecideReviewInput
	if !s.bindJSON(c, &input) {
		return
	}
	review, err := s.services.Reviews.Decide(c.Request.Context(), authContext(c), c.Param("id"), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
