// Package service implements the business operations behind the HTTP
// API. Every operation takes the caller's rbac.AuthContext, checks the
// capability table first, then resolves the target entity and applies
// membership scoping. Existence is always checked before authorization
// so a missing resource is 404 regardless of who asks.
package service

import (
	"context"
	"log/slog"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/blob"
	"github.com/agencyos/agencyos/internal/calendar"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/metrics"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/pkg/auth"
)

// Services bundles every business service behind one constructor so
// the server wires a single value.
type Services struct {
	Auth          *AuthService
	Clients       *ClientService
	Projects      *ProjectService
	Tasks         *TaskService
	Reviews       *ReviewService
	Feedback      *FeedbackService
	TimeLogs      *TimeLogService
	Chat          *ChatService
	Files         *FileService
	Notifications *NotificationService
	Calendar      *CalendarService
}

// Deps carries the shared infrastructure every service draws from.
type Deps struct {
	Store     repository.Store
	RBAC      *rbac.Table
	Tokens    *auth.TokenManager
	Passwords *auth.PasswordManager
	Notifier  *notify.Notifier
	Metrics   *metrics.Metrics
	Signer    blob.Signer
	Calendar  calendar.Pusher
	Logger    *slog.Logger
}

func New(deps Deps) *Services {
	return &Services{
		Auth:          NewAuthService(deps.Store, deps.Tokens, deps.Passwords),
		Clients:       NewClientService(deps.Store, deps.RBAC),
		Projects:      NewProjectService(deps.Store, deps.RBAC),
		Tasks:         NewTaskService(deps.Store, deps.RBAC, deps.Notifier, deps.Metrics, deps.Logger),
		Reviews:       NewReviewService(deps.Store, deps.RBAC, deps.Notifier, deps.Metrics, deps.Logger),
		Feedback:      NewFeedbackService(deps.Store, deps.RBAC),
		TimeLogs:      NewTimeLogService(deps.Store, deps.RBAC),
		Chat:          NewChatService(deps.Store, deps.RBAC, deps.Notifier),
		Files:         NewFileService(deps.Store, deps.RBAC, deps.Signer),
		Notifications: NewNotificationService(deps.Store, deps.RBAC),
		Calendar:      NewCalendarService(deps.Store, deps.RBAC, deps.Calendar, deps.Notifier, deps.Logger),
	}
}

// taskScope resolves the membership data needed to authorize a
// task-rooted operation.
func taskScope(ctx context.Context, store repository.Store, task *domain.Task) (domain.AccessScope, error) {
	return store.Projects().AccessScope(ctx, task.ProjectID)
}

// authorizeProjectAccess loads the project scope and applies membership
// checks for the caller.
func authorizeProjectAccess(ctx context.Context, store repository.Store, auth rbac.AuthContext, projectID string) (domain.AccessScope, error) {
	scope, err := store.Projects().AccessScope(ctx, projectID)
	if err != nil {
		return domain.AccessScope{}, err
	}
	if !rbac.CanAccessProject(auth, scope.MemberIDs, scope.ContactIDs) {
		return domain.AccessScope{}, authzDenied()
	}
	return scope, nil
}

func authzDenied() error { return apperr.Authorization("access denied") }

func logError(logger *slog.Logger, op string, err error) {
	if err != nil {
		logger.Error(op, "error", err)
	}
}
