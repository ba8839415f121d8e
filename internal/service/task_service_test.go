package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

func TestTransitionFollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.services.Tasks.Transition(ctx, f.dev, f.task.ID, "DOING")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDoing, task.Status)

	task, err = f.services.Tasks.Transition(ctx, f.dev, f.task.ID, "REVIEW")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusReview, task.Status)

	task, err = f.services.Tasks.Transition(ctx, f.dev, f.task.ID, "BLOCKED")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusBlocked, task.Status)

	task, err = f.services.Tasks.Transition(ctx, f.dev, f.task.ID, "DOING")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDoing, task.Status)
}

func TestTransitionRejectsSkips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Tasks.Transition(ctx, f.dev, f.task.ID, "DONE")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	// Status unchanged after the rejected request.
	task, err := f.store.Tasks().GetByID(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
}

func TestTransitionSelfIsNoOp(t *testing.T) {
	f := newFixture(t)
	task, err := f.services.Tasks.Transition(context.Background(), f.dev, f.task.ID, "TODO")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
}

func TestTransitionUnknownStatusIsValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Tasks.Transition(context.Background(), f.dev, f.task.ID, "ARCHIVED")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestClientCannotTransition(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Tasks.Transition(context.Background(), f.contact, f.task.ID, "DOING")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestGetTaskChecksExistenceBeforeAccess(t *testing.T) {
	f := newFixture(t)
	// A CLIENT outside the account gets 404 for a missing task, not 403.
	outsider := f.contact
	outsider.UserID = "someone-else"
	_, err := f.services.Tasks.Get(context.Background(), outsider, "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetTaskDeniesOutsideContact(t *testing.T) {
	f := newFixture(t)
	outsider := f.contact
	outsider.UserID = "someone-else"
	_, err := f.services.Tasks.Get(context.Background(), outsider, f.task.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestContactReadsTasksThroughClientScope(t *testing.T) {
	f := newFixture(t)
	task, err := f.services.Tasks.Get(context.Background(), f.contact, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, f.task.ID, task.ID)
}

func TestListTasksScopesClientRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tasks, err := f.services.Tasks.List(ctx, f.contact, TaskListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	outsider := f.contact
	outsider.UserID = "someone-else"
	tasks, err = f.services.Tasks.List(ctx, outsider, TaskListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUpdateTaskNotifiesNewAssignees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Tasks.Update(ctx, f.admin, f.task.ID, UpdateTaskInput{
		AssigneeIDs: []string{f.dev.UserID, f.dev2.UserID},
	})
	require.NoError(t, err)

	// Only the newly added assignee is notified.
	notifications, err := f.store.Notifications().ListByUser(ctx, f.dev2.UserID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTaskAssigned, notifications[0].Type)

	notifications, err = f.store.Notifications().ListByUser(ctx, f.dev.UserID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestDeletedTaskIsGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.services.Tasks.Delete(ctx, f.admin, f.task.ID))

	_, err := f.services.Tasks.Get(ctx, f.admin, f.task.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
