package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

func seedTask(t *testing.T, store *Memory, id string, status domain.TaskStatus) domain.Task {
	t.Helper()
	task := domain.Task{
		ID:        id,
		ProjectID: "p1",
		Title:     "task " + id,
		Status:    status,
		Priority:  domain.PriorityMedium,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Tasks().Create(context.Background(), &task))
	return task
}

func TestTaskUpdateStatusCAS(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedTask(t, store, "t1", domain.TaskStatusDoing)

	require.NoError(t, store.Tasks().UpdateStatus(ctx, "t1", domain.TaskStatusDoing, domain.TaskStatusReview))

	// A second writer holding the stale expected status loses.
	err := store.Tasks().UpdateStatus(ctx, "t1", domain.TaskStatusDoing, domain.TaskStatusReview)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	err = store.Tasks().UpdateStatus(ctx, "missing", domain.TaskStatusDoing, domain.TaskStatusReview)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTaskSoftDeleteHidesEverywhere(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedTask(t, store, "t1", domain.TaskStatusTodo)

	require.NoError(t, store.Tasks().SoftDelete(ctx, "t1"))

	_, err := store.Tasks().GetByID(ctx, "t1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	tasks, err := store.Tasks().List(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Deleting twice reports not found, not success.
	err = store.Tasks().SoftDelete(ctx, "t1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestReviewDecideOnce(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	review := domain.ReviewSubmission{
		ID: "r1", ProjectID: "p1", TaskID: "t1",
		Status: domain.ReviewStatusPending, SubmittedByID: "dev",
		CreatedAt: now,
	}
	require.NoError(t, store.Reviews().Create(ctx, &review))

	pending, err := store.Reviews().HasPending(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, pending)

	decided, err := store.Reviews().Decide(ctx, "r1", domain.ReviewStatusApproved, "admin", nil, now)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, decided.Status)
	require.NotNil(t, decided.ReviewerID)
	assert.Equal(t, "admin", *decided.ReviewerID)
	require.NotNil(t, decided.RespondedAt)

	_, err = store.Reviews().Decide(ctx, "r1", domain.ReviewStatusChangesRequested, "admin", nil, now)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAlreadyDecided, apperr.KindOf(err))

	_, err = store.Reviews().Decide(ctx, "missing", domain.ReviewStatusApproved, "admin", nil, now)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	pending, err = store.Reviews().HasPending(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestInTxRollbackRestoresState(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedTask(t, store, "t1", domain.TaskStatusDoing)

	boom := errors.New("boom")
	err := store.InTx(ctx, func(tx Store) error {
		if err := tx.Reviews().Create(ctx, &domain.ReviewSubmission{
			ID: "r1", ProjectID: "p1", TaskID: "t1",
			Status: domain.ReviewStatusPending, SubmittedByID: "dev",
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := tx.Tasks().UpdateStatus(ctx, "t1", domain.TaskStatusDoing, domain.TaskStatusReview); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Both writes rolled back together.
	task, err := store.Tasks().GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDoing, task.Status)

	_, err = store.Reviews().GetByID(ctx, "r1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestInTxCommitKeepsWrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedTask(t, store, "t1", domain.TaskStatusDoing)

	err := store.InTx(ctx, func(tx Store) error {
		return tx.Tasks().UpdateStatus(ctx, "t1", domain.TaskStatusDoing, domain.TaskStatusReview)
	})
	require.NoError(t, err)

	task, err := store.Tasks().GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusReview, task.Status)
}

func TestClientSoftDeleteFiltersLists(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	client := domain.Client{
		ID: "c1", Name: "Acme", NameNormalized: "acme",
		Stage: domain.ClientStageLead, Priority: domain.PriorityMedium,
		ContactIDs: []string{"contact"}, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Clients().Create(ctx, &client))
	require.NoError(t, store.Clients().SoftDelete(ctx, "c1"))

	_, err := store.Clients().GetByID(ctx, "c1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	clients, err := store.Clients().List(ctx, ClientFilter{})
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestAddContactIdempotent(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	client := domain.Client{ID: "c1", Name: "Acme", NameNormalized: "acme", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Clients().Create(ctx, &client))
	require.NoError(t, store.Clients().AddContact(ctx, "c1", "u1"))
	require.NoError(t, store.Clients().AddContact(ctx, "c1", "u1"))

	got, err := store.Clients().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, []string(got.ContactIDs))
}

func TestAccessScopeJoinsMembersAndContacts(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Clients().Create(ctx, &domain.Client{
		ID: "c1", Name: "Acme", NameNormalized: "acme",
		ContactIDs: []string{"contact"}, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Projects().Create(ctx, &domain.Project{
		ID: "p1", ClientID: "c1", Name: "Relaunch",
		MemberIDs: []string{"dev"}, CreatedAt: time.Now().UTC(),
	}))

	scope, err := store.Projects().AccessScope(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev"}, scope.MemberIDs)
	assert.Equal(t, []string{"contact"}, scope.ContactIDs)

	_, err = store.Projects().AccessScope(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFileNextVersionCountsDeletedRows(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	projectID := "p1"

	file := domain.File{
		ID: "f1", Name: "brief.pdf", Version: 1, ProjectID: &projectID,
		UploaderID: "dev", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Files().Create(ctx, &file))
	require.NoError(t, store.Files().SoftDelete(ctx, "f1"))

	version, err := store.Files().NextVersion(ctx, "brief.pdf", nil, &projectID)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	// Different scope starts its own sequence.
	version, err = store.Files().NextVersion(ctx, "brief.pdf", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNotificationMarkRead(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	batch := []domain.Notification{
		{ID: "n1", UserID: "u1", Type: domain.NotificationReviewStatus, Payload: []byte(`{}`), CreatedAt: now},
		{ID: "n2", UserID: "u1", Type: domain.NotificationChatMention, Payload: []byte(`{}`), CreatedAt: now.Add(time.Second)},
		{ID: "n3", UserID: "u2", Type: domain.NotificationTaskAssigned, Payload: []byte(`{}`), CreatedAt: now},
	}
	require.NoError(t, store.Notifications().CreateBatch(ctx, batch))

	// Targeted mark touches only the named id.
	require.NoError(t, store.Notifications().MarkRead(ctx, "u1", []string{"n1"}, now))
	list, err := store.Notifications().ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		if n.ID == "n1" {
			assert.NotNil(t, n.ReadAt)
		} else {
			assert.Nil(t, n.ReadAt)
		}
	}

	// Empty id list marks the whole feed, never another user's rows.
	require.NoError(t, store.Notifications().MarkRead(ctx, "u1", nil, now))
	list, err = store.Notifications().ListByUser(ctx, "u1")
	require.NoError(t, err)
	for _, n := range list {
		assert.NotNil(t, n.ReadAt)
	}

	other, err := store.Notifications().ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Nil(t, other[0].ReadAt)
}

func TestChannelVisibility(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Clients().Create(ctx, &domain.Client{
		ID: "c1", Name: "Acme", NameNormalized: "acme",
		ContactIDs: []string{"contact"}, CreatedAt: now,
	}))
	require.NoError(t, store.Projects().Create(ctx, &domain.Project{
		ID: "p1", ClientID: "c1", Name: "Relaunch",
		MemberIDs: []string{"dev"}, CreatedAt: now,
	}))

	projectID := "p1"
	channels := []domain.Channel{
		{ID: "general", Type: domain.ChannelTypeGeneral, Name: "general", CreatedAt: now},
		{ID: "proj", Type: domain.ChannelTypeProject, Name: "relaunch", ProjectID: &projectID, CreatedAt: now.Add(time.Second)},
		{ID: "dm", Type: domain.ChannelTypeDirect, Name: "dm", ParticipantIDs: []string{"dev", "admin"}, CreatedAt: now.Add(2 * time.Second)},
	}
	for i := range channels {
		require.NoError(t, store.Channels().Create(ctx, &channels[i]))
	}

	ids := func(list []domain.Channel) []string {
		out := make([]string, len(list))
		for i, ch := range list {
			out[i] = ch.ID
		}
		return out
	}

	visible, err := store.Channels().ListVisible(ctx, "dev", domain.RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "proj", "dm"}, ids(visible))

	visible, err = store.Channels().ListVisible(ctx, "contact", domain.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "proj"}, ids(visible))

	visible, err = store.Channels().ListVisible(ctx, "outsider", domain.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, ids(visible))
}
