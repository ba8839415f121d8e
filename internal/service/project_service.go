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

// ProjectService manages projects under client accounts.
type ProjectService struct {
	store repository.Store
	rbac  *rbac.Table
}

func NewProjectService(store repository.Store, table *rbac.Table) *ProjectService {
	return &ProjectService{store: store, rbac: table}
}

type CreateProjectInput struct {
	ClientID    string     `json:"clientId" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
	Stage       string     `json:"stage"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	MemberIDs   []string   `json:"memberIds"`
}

func (s *ProjectService) Create(ctx context.Context, auth rbac.AuthContext, input CreateProjectInput) (*domain.Project, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermProjectWrite); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if _, err := s.store.Clients().GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}
	stage := domain.ProjectStageDiscovery
	if input.Stage != "" {
		parsed, err := domain.ParseProjectStage(input.Stage)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		stage = parsed
	}
	priority := domain.PriorityMedium
	if input.Priority != "" {
		parsed, err := domain.ParsePriority(input.Priority)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		priority = parsed
	}

	members := input.MemberIDs
	if members == nil {
		members = []string{}
	}
	now := time.Now().UTC()
	project := &domain.Project{
		ID:          uuid.NewString(),
		ClientID:    input.ClientID,
		Name:        name,
		Description: input.Description,
		Stage:       stage,
		Priority:    priority,
		DueDate:     input.DueDate,
		MemberIDs:   members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, apperr.Internal(err)
	}
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, auth rbac.AuthContext, id string) (*domain.Project, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermProjectRead); err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeProjectAccess(ctx, s.store, auth, id); err != nil {
		return nil, err
	}
	return project, nil
}

// List scopes results by role: privileged callers see everything
// (optionally filtered by client), CLIENT callers see projects under
// accounts naming them as a contact.
func (s *ProjectService) List(ctx context.Context, auth rbac.AuthContext, clientID *string) ([]domain.Project, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermProjectRead); err != nil {
		return nil, err
	}
	filter := repository.ProjectFilter{ClientID: clientID}
	if auth.Role == domain.RoleClient {
		filter.ContactUserID = &auth.UserID
	}
	return s.store.Projects().List(ctx, filter)
}

type UpdateProjectInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Stage       *string    `json:"stage"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func (s *ProjectService) Update(ctx context.Context, auth rbac.AuthContext, id string, input UpdateProjectInput) (*domain.Project, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermProjectWrite); err != nil {
		return nil, err
	}
	update := repository.ProjectUpdate{
		Name:        input.Name,
		Description: input.Description,
		DueDate:     input.DueDate,
	}
	if input.Stage != nil {
		stage, err := domain.ParseProjectStage(*input.Stage)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		update.Stage = &stage
	}
	if input.Priority != nil {
		priority, err := domain.ParsePriority(*input.Priority)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		update.Priority = &priority
	}
	return s.store.Projects().Update(ctx, id, update)
}

func (s *ProjectService) Delete(ctx context.Context, auth rbac.AuthContext, id string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermProjectWrite); err != nil {
		return err
	}
	return s.store.Projects().SoftDelete(ctx, id)
}

// AddMember attaches a non-CLIENT user to the project team.
func (s *ProjectService) AddMember(ctx context.Context, auth rbac.AuthContext, projectID, userID string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermProjectWrite); err != nil {
		return err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleClient {
		return apperr.Validation("client users join via client contacts, not project membership")
	}
	return s.store.Projects().AddMember(ctx, projectID, userID)
}
