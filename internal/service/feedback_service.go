package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
)

// FeedbackService records and searches commentary on clients,
// projects, and tasks.
type FeedbackService struct {
	store repository.Store
	rbac  *rbac.Table
}

func NewFeedbackService(store repository.Store, table *rbac.Table) *FeedbackService {
	return &FeedbackService{store: store, rbac: table}
}

type CreateFeedbackInput struct {
	TargetType      string `json:"targetType" binding:"required"`
	TargetID        string `json:"targetId" binding:"required"`
	Content         string `json:"content" binding:"required"`
	IsClientVisible bool   `json:"isClientVisible"`
}

func (s *FeedbackService) Create(ctx context.Context, auth rbac.AuthContext, input CreateFeedbackInput) (*domain.Feedback, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermFeedbackWrite); err != nil {
		return nil, err
	}
	targetType, err := domain.ParseTargetType(input.TargetType)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}

	feedback := &domain.Feedback{
		ID:              uuid.NewString(),
		TargetType:      targetType,
		TargetID:        input.TargetID,
		Content:         content,
		IsClientVisible: input.IsClientVisible,
		AuthorID:        auth.UserID,
		CreatedAt:       time.Now().UTC(),
	}
	// CLIENT authors always produce client-visible feedback.
	if auth.Role == domain.RoleClient {
		feedback.IsClientVisible = true
	}

	if err := s.resolveTarget(ctx, auth, feedback); err != nil {
		return nil, err
	}
	if err := s.store.Feedback().Create(ctx, feedback); err != nil {
		return nil, apperr.Internal(err)
	}
	return feedback, nil
}

// resolveTarget checks the target exists, that the caller can see it,
// and denormalizes the owning client/project/task ids.
func (s *FeedbackService) resolveTarget(ctx context.Context, auth rbac.AuthContext, feedback *domain.Feedback) error {
	switch feedback.TargetType {
	case domain.TargetClient:
		client, err := s.store.Clients().GetByID(ctx, feedback.TargetID)
		if err != nil {
			return err
		}
		if !rbac.CanAccessClient(auth, client.ContactIDs) {
			return authzDenied()
		}
		feedback.ClientID = &client.ID
	case domain.TargetProject:
		project, err := s.store.Projects().GetByID(ctx, feedback.TargetID)
		if err != nil {
			return err
		}
		if _, err := authorizeProjectAccess(ctx, s.store, auth, project.ID); err != nil {
			return err
		}
		feedback.ProjectID = &project.ID
		feedback.ClientID = &project.ClientID
	case domain.TargetTask:
		task, err := s.store.Tasks().GetByID(ctx, feedback.TargetID)
		if err != nil {
			return err
		}
		scope, err := taskScope(ctx, s.store, task)
		if err != nil {
			return err
		}
		if !rbac.CanAccessTask(auth, task.AssigneeIDs, scope.MemberIDs, scope.ContactIDs) {
			return authzDenied()
		}
		feedback.TaskID = &task.ID
		feedback.ProjectID = &task.ProjectID
	}
	return nil
}

// Search lists feedback for one target. CLIENT callers only ever see
// client-visible entries.
func (s *FeedbackService) Search(ctx context.Context, auth rbac.AuthContext, targetType, targetID string) ([]domain.Feedback, error) {
	parsed, err := domain.ParseTargetType(targetType)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	probe := &domain.Feedback{TargetType: parsed, TargetID: targetID}
	if err := s.resolveTarget(ctx, auth, probe); err != nil {
		return nil, err
	}
	return s.store.Feedback().Search(ctx, repository.FeedbackFilter{
		TargetType:  parsed,
		TargetID:    targetID,
		VisibleOnly: auth.Role == domain.RoleClient,
	})
}
