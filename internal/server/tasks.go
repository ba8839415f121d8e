package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleCreateTask(c *gin.Context) {
	var input service.CreateTaskInput
	if !s.bindJSON(c, &input) {
		return
	}
	task, err := s.services.Tasks.Create(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	filter := service.TaskListFilter{}
	if value := c.Query("projectId"); value != "" {
		filter.ProjectID = &value
	}
	if value := c.Query("status"); value != "" {
		filter.Status = &value
	}
	tasks, err := s.services.Tasks.List(c.Request.Context(), authContext(c), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.services.Tasks.Get(c.Request.Context(), authContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var input service.UpdateTaskInput
	if !s.bindJSON(c, &input) {
		return
	}
	task, err := s.services.Tasks.Update(c.Request.Context(), authContext(c), c.Param("id"), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleTransitionTask(c *gin.Context) {
	var req transitionRequest
	if !s.bindJSON(c, &req) {
		return
	}
	task, err := s.services.Tasks.Transition(c.Request.Context(), authContext(c), c.Param("id"), req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.services.Tasks.Delete(c.Request.Context(), authContext(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListTaskReviews(c *gin.Context) {
	reviews, err := s.services.Reviews.ListByTask(c.Request.Context(), authContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
