package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

func TestTransitionTaskTable(t *testing.T) {
	legal := map[domain.TaskStatus][]domain.TaskStatus{
		domain.TaskStatusTodo:    {domain.TaskStatusDoing},
		domain.TaskStatusDoing:   {domain.TaskStatusReview},
		domain.TaskStatusReview:  {domain.TaskStatusDone, domain.TaskStatusBlocked},
		domain.TaskStatusDone:    {},
		domain.TaskStatusBlocked: {domain.TaskStatusDoing},
	}

	for _, from := range TaskStatuses() {
		for _, to := range TaskStatuses() {
			next, err := TransitionTask(from, to)
			switch {
			case from == to:
				require.NoError(t, err, "%s->%s self transition", from, to)
				assert.Equal(t, from, next)
			case containsStatus(legal[from], to):
				require.NoError(t, err, "%s->%s", from, to)
				assert.Equal(t, to, next)
			default:
				require.Error(t, err, "%s->%s", from, to)
				assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
			}
		}
	}
}

func TestTransitionTaskUnknownCurrent(t *testing.T) {
	_, err := TransitionTask("LIMBO", domain.TaskStatusDoing)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestTerminalTaskStatuses(t *testing.T) {
	assert.True(t, IsTerminalTaskStatus(domain.TaskStatusDone))
	for _, status := range []domain.TaskStatus{
		domain.TaskStatusTodo, domain.TaskStatusDoing,
		domain.TaskStatusReview, domain.TaskStatusBlocked,
	} {
		assert.False(t, IsTerminalTaskStatus(status), string(status))
	}
}

func containsStatus(statuses []domain.TaskStatus, status domain.TaskStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}
