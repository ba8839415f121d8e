package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/service"
)

func (s *Server) handleCreateTimeLog(c *gin.Context) {
	var input service.CreateTimeLogInput
	if !s.bindJSON(c, &input) {
		return
	}
	log, err := s.services.TimeLogs.Create(c.Request.Context(), authContext(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (s *Server) handleListTimeLogs(c *gin.Context) {
	filter := service.TimeLogListFilter{}
	if value := c.Query("projectId"); value != "" {
		filter.ProjectID = &value
	}
	if value := c.Query("memberId"); value != "" {
		filter.MemberID = &value
	}
	for query, target := range map[string]**time.Time{"start": &filter.Start, "end": &filter.End} {
		if value := c.Query(query); value != "" {
			parsed, err := time.Parse(time.RFC3339, value)
			if err != nil {
				s.respondError(c, apperr.Validationf("invalid %s timestamp", query))
				return
			}
			*target = &parsed
		}
	}
	logs, err := s.services.TimeLogs.List(c.Request.Context(), authContext(c), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeLogs": logs})
}

func (s *Server) handleWeeklySummary(c *gin.Context) {
	anchor := time.Now().UTC()
	if value := c.Query("date"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			s.respondError(c, apperr.Validation("invalid date timestamp"))
			return
		}
		anchor = parsed
	}
	summary, err := s.services.TimeLogs.WeeklySummary(c.Request.Context(), authContext(c), c.Query("memberId"), anchor)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
