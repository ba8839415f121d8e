package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/metrics"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/internal/workflow"
)

// TaskService manages tasks and their lifecycle transitions.
type TaskService struct {
	store    repository.Store
	rbac     *rbac.Table
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewTaskService(store repository.Store, table *rbac.Table, notifier *notify.Notifier, m *metrics.Metrics, logger *slog.Logger) *TaskService {
	return &TaskService{store: store, rbac: table, notifier: notifier, metrics: m, logger: logger}
}

type CreateTaskInput struct {
	ProjectID   string     `json:"projectId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	EstimateHrs *float64   `json:"estimateHrs"`
	OrderIndex  int        `json:"orderIndex"`
	AssigneeIDs []string   `json:"assigneeIds"`
}

func (s *TaskService) Create(ctx context.Context, auth rbac.AuthContext, input CreateTaskInput) (*domain.Task, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskWrite); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if _, err := s.store.Projects().GetByID(ctx, input.ProjectID); err != nil {
		return nil, err
	}
	priority := domain.PriorityMedium
	if input.Priority != "" {
		parsed, err := domain.ParsePriority(input.Priority)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		priority = parsed
	}
	assignees := input.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.NewString(),
		ProjectID:   input.ProjectID,
		Title:       title,
		Description: input.Description,
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		EstimateHrs: input.EstimateHrs,
		OrderIndex:  input.OrderIndex,
		AssigneeIDs: assignees,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, apperr.Internal(err)
	}
	s.notifier.TaskAssigned(ctx, withoutActor(assignees, auth.UserID), task)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, auth rbac.AuthContext, id string) (*domain.Task, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskRead); err != nil {
		return nil, err
	}
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scope, err := taskScope(ctx, s.store, task)
	if err != nil {
		return nil, err
	}
	if !rbac.CanAccessTask(auth, task.AssigneeIDs, scope.MemberIDs, scope.ContactIDs) {
		return nil, authzDenied()
	}
	return task, nil
}

type TaskListFilter struct {
	ProjectID *string
	Status    *string
}

func (s *TaskService) List(ctx context.Context, auth rbac.AuthContext, filter TaskListFilter) ([]domain.Task, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskRead); err != nil {
		return nil, err
	}
	repoFilter := repository.TaskFilter{ProjectID: filter.ProjectID}
	if filter.Status != nil {
		status, err := domain.ParseTaskStatus(*filter.Status)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		repoFilter.Status = &status
	}
	if auth.Role == domain.RoleClient {
		repoFilter.ContactUserID = &auth.UserID
	}
	return s.store.Tasks().List(ctx, repoFilter)
}

type UpdateTaskInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	EstimateHrs *float64   `json:"estimateHrs"`
	OrderIndex  *int       `json:"orderIndex"`
	AssigneeIDs []string   `json:"assigneeIds"`
}

func (s *TaskService) Update(ctx context.Context, auth rbac.AuthContext, id string, input UpdateTaskInput) (*domain.Task, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskWrite); err != nil {
		return nil, err
	}
	before, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update := repository.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		EstimateHrs: input.EstimateHrs,
		OrderIndex:  input.OrderIndex,
		AssigneeIDs: input.AssigneeIDs,
	}
	if input.Priority != nil {
		priority, err := domain.ParsePriority(*input.Priority)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		update.Priority = &priority
	}
	task, err := s.store.Tasks().Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if input.AssigneeIDs != nil {
		added := newAssignees(before.AssigneeIDs, task.AssigneeIDs)
		s.notifier.TaskAssigned(ctx, withoutActor(added, auth.UserID), task)
	}
	return task, nil
}

// Transition moves a task through the lifecycle table. The persisted
// change is a compare-and-swap against the status the caller observed,
// so racing transitions fail with Conflict rather than double applying.
func (s *TaskService) Transition(ctx context.Context, auth rbac.AuthContext, id, requested string) (*domain.Task, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskWrite); err != nil {
		return nil, err
	}
	target, err := domain.ParseTaskStatus(requested)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := workflow.TransitionTask(task.Status, target)
	if err != nil {
		return nil, err
	}
	if next == task.Status {
		return task, nil
	}
	if err := s.store.Tasks().UpdateStatus(ctx, id, task.Status, next); err != nil {
		return nil, err
	}
	s.metrics.TransitionApplied("task", string(next))
	return s.store.Tasks().GetByID(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, auth rbac.AuthContext, id string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskWrite); err != nil {
		return err
	}
	return s.store.Tasks().SoftDelete(ctx, id)
}

func withoutActor(ids []string, actorID string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != actorID {
			out = append(out, id)
		}
	}
	return out
}

func newAssignees(before, after []string) []string {
	prior := make(map[string]struct{}, len(before))
	for _, id := range before {
		prior[id] = struct{}{}
	}
	added := []string{}
	for _, id := range after {
		if _, ok := prior[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
