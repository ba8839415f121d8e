package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/calendar"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
)

// CalendarService pushes deadline events to the external calendar.
// Pushes are fire and forget: the API call returns as soon as the event
// is validated, and webhook failures are only logged.
type CalendarService struct {
	store    repository.Store
	rbac     *rbac.Table
	pusher   calendar.Pusher
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewCalendarService(store repository.Store, table *rbac.Table, pusher calendar.Pusher, notifier *notify.Notifier, logger *slog.Logger) *CalendarService {
	return &CalendarService{store: store, rbac: table, pusher: pusher, notifier: notifier, logger: logger}
}

type PushEventInput struct {
	Title     string    `json:"title" binding:"required"`
	StartsAt  time.Time `json:"startsAt" binding:"required"`
	ProjectID *string   `json:"projectId"`
	TaskID    *string   `json:"taskId"`
}

func (s *CalendarService) Push(ctx context.Context, auth rbac.AuthContext, input PushEventInput) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermCalendarWrite); err != nil {
		return err
	}
	if input.ProjectID != nil {
		if _, err := s.store.Projects().GetByID(ctx, *input.ProjectID); err != nil {
			return err
		}
	}
	if input.TaskID != nil {
		task, err := s.store.Tasks().GetByID(ctx, *input.TaskID)
		if err != nil {
			return err
		}
		if input.ProjectID == nil {
			input.ProjectID = &task.ProjectID
		}
	}
	if input.ProjectID == nil && input.TaskID == nil {
		return apperr.Validation("event needs a projectId or taskId")
	}

	event := calendar.Event{
		Title:     input.Title,
		StartsAt:  input.StartsAt.UTC(),
		ProjectID: input.ProjectID,
		TaskID:    input.TaskID,
		UserID:    auth.UserID,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.pusher.Push(ctx, event); err != nil {
			s.logger.Error("calendar push", "title", event.Title, "error", err)
			return
		}
		s.notifier.CalendarEvent(ctx, []string{event.UserID}, map[string]any{
			"title":    event.Title,
			"startsAt": event.StartsAt,
		})
	}()
	return nil
}
