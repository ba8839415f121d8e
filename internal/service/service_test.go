package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/blob"
	"github.com/agencyos/agencyos/internal/calendar"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/metrics"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/pkg/auth"
)

type fixture struct {
	store    *repository.Memory
	services *Services

	admin   rbac.AuthContext
	dev     rbac.AuthContext
	dev2    rbac.AuthContext
	contact rbac.AuthContext

	client  *domain.Client
	project *domain.Project
	task    *domain.Task
}

// newFixture builds a memory-backed service stack with one client
// account, one project (dev is a member, contact is a client contact),
// and one TODO task assigned to dev.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	services := New(Deps{
		Store:     store,
		RBAC:      rbac.NewTable(),
		Tokens:    auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour),
		Passwords: auth.NewPasswordManager(),
		Notifier:  notify.New(store, logger),
		Metrics:   metrics.New(),
		Signer:    blob.NewFilesystem("data/files", ""),
		Calendar:  calendar.NopPusher{},
		Logger:    logger,
	})

	f := &fixture{store: store, services: services}
	now := time.Now().UTC()

	devCapacity := 40.0
	users := map[string]*rbac.AuthContext{}
	for _, spec := range []struct {
		key      string
		role     domain.Role
		capacity *float64
	}{
		{"admin", domain.RoleAdmin, nil},
		{"dev", domain.RoleDeveloper, &devCapacity},
		{"dev2", domain.RoleDeveloper, nil},
		{"contact", domain.RoleClient, nil},
	} {
		user := &domain.User{
			ID:                 uuid.NewString(),
			Email:              spec.key + "@example.test",
			Name:               spec.key,
			Role:               spec.role,
			PasswordHash:       "x",
			CapacityHrsPerWeek: spec.capacity,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		require.NoError(t, store.Users().Create(ctx, user))
		users[spec.key] = &rbac.AuthContext{UserID: user.ID, Role: spec.role}
	}
	f.admin, f.dev, f.dev2, f.contact = *users["admin"], *users["dev"], *users["dev2"], *users["contact"]

	f.client = &domain.Client{
		ID: uuid.NewString(), Name: "Acme", NameNormalized: "acme",
		Stage: domain.ClientStageActive, Priority: domain.PriorityMedium,
		ContactIDs: []string{f.contact.UserID}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Clients().Create(ctx, f.client))

	f.project = &domain.Project{
		ID: uuid.NewString(), ClientID: f.client.ID, Name: "Relaunch",
		Stage: domain.ProjectStageBuild, Priority: domain.PriorityMedium,
		MemberIDs: []string{f.dev.UserID}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Projects().Create(ctx, f.project))

	f.task = &domain.Task{
		ID: uuid.NewString(), ProjectID: f.project.ID, Title: "Build homepage",
		Status: domain.TaskStatusTodo, Priority: domain.PriorityMedium,
		AssigneeIDs: []string{f.dev.UserID}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Tasks().Create(ctx, f.task))

	return f
}

// moveTaskTo walks the task through legal transitions to the target.
func (f *fixture) moveTaskTo(t *testing.T, target domain.TaskStatus) {
	t.Helper()
	ctx := context.Background()
	path := map[domain.TaskStatus][]string{
		domain.TaskStatusDoing:  {"DOING"},
		domain.TaskStatusReview: {"DOING", "REVIEW"},
	}[target]
	for _, status := range path {
		_, err := f.services.Tasks.Transition(ctx, f.admin, f.task.ID, status)
		require.NoError(t, err)
	}
}
