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

// ClientService manages agency client accounts.
type ClientService struct {
	store repository.Store
	rbac  *rbac.Table
}

func NewClientService(store repository.Store, table *rbac.Table) *ClientService {
	return &ClientService{store: store, rbac: table}
}

type CreateClientInput struct {
	Name     string  `json:"name" binding:"required"`
	Domain   *string `json:"domain"`
	Stage    string  `json:"stage"`
	Priority string  `json:"priority"`
	Notes    *string `json:"notes"`
}

func (s *ClientService) Create(ctx context.Context, auth rbac.AuthContext, input CreateClientInput) (*domain.Client, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermClientWrite); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	stage := domain.ClientStageLead
	if input.Stage != "" {
		parsed, err := domain.ParseClientStage(input.Stage)
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

	normalized := strings.ToLower(name)
	existing, err := s.store.Clients().List(ctx, repository.ClientFilter{})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for _, c := range existing {
		if c.NameNormalized == normalized {
			return nil, apperr.Conflict("client name already in use")
		}
	}

	var clientDomain *string
	if input.Domain != nil {
		lowered := strings.ToLower(strings.TrimSpace(*input.Domain))
		clientDomain = &lowered
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:             uuid.NewString(),
		Name:           name,
		NameNormalized: normalized,
		Domain:         clientDomain,
		Stage:          stage,
		Priority:       priority,
		Notes:          input.Notes,
		ContactIDs:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Clients().Create(ctx, client); err != nil {
		return nil, apperr.Internal(err)
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, auth rbac.AuthContext, id string) (*domain.Client, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermClientRead); err != nil {
		return nil, err
	}
	client, err := s.store.Clients().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanAccessClient(auth, client.ContactIDs) {
		return nil, authzDenied()
	}
	return client, nil
}

// List returns every client for privileged roles; CLIENT callers see
// only accounts naming them as a contact.
func (s *ClientService) List(ctx context.Context, auth rbac.AuthContext) ([]domain.Client, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermClientRead); err != nil {
		return nil, err
	}
	filter := repository.ClientFilter{}
	if auth.Role == domain.RoleClient {
		filter.ContactUserID = &auth.UserID
	}
	return s.store.Clients().List(ctx, filter)
}

type UpdateClientInput struct {
	Name     *string `json:"name"`
	Domain   *string `json:"domain"`
	Stage    *string `json:"stage"`
	Priority *string `json:"priority"`
	Notes    *string `json:"notes"`
}

func (s *ClientService) Update(ctx context.Context, auth rbac.AuthContext, id string, input UpdateClientInput) (*domain.Client, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermClientWrite); err != nil {
		return nil, err
	}
	update := repository.ClientUpdate{
		Name:   input.Name,
		Domain: input.Domain,
		Notes:  input.Notes,
	}
	if input.Stage != nil {
		stage, err := domain.ParseClientStage(*input.Stage)
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
	return s.store.Clients().Update(ctx, id, update)
}

func (s *ClientService) Delete(ctx context.Context, auth rbac.AuthContext, id string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermClientWrite); err != nil {
		return err
	}
	return s.store.Clients().SoftDelete(ctx, id)
}

// AddContact links a CLIENT-role user to the account; contacts gain
// read access to the client and its projects.
func (s *ClientService) AddContact(ctx context.Context, auth rbac.AuthContext, clientID, userID string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermClientWrite); err != nil {
		return err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleClient {
		return apperr.Validation("contact must be a CLIENT user")
	}
	return s.store.Clients().AddContact(ctx, clientID, userID)
}
