package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

func TestTransitionReviewFromPending(t *testing.T) {
	next, err := TransitionReview(domain.ReviewStatusPending, ReviewEventApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, next)

	next, err = TransitionReview(domain.ReviewStatusPending, ReviewEventRequestChanges)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusChangesRequested, next)
}

func TestTransitionReviewDecidedStatesAreTerminal(t *testing.T) {
	for _, current := range []domain.ReviewStatus{
		domain.ReviewStatusApproved, domain.ReviewStatusChangesRequested,
	} {
		for _, event := range []ReviewEvent{ReviewEventApprove, ReviewEventRequestChanges} {
			_, err := TransitionReview(current, event)
			require.Error(t, err, "%s + %s", current, event)
			assert.Equal(t, apperr.KindAlreadyDecided, apperr.KindOf(err))
		}
	}
}

func TestParseReviewEvent(t *testing.T) {
	for _, raw := range []string{"APPROVE", "REQUEST_CHANGES"} {
		event, err := ParseReviewEvent(raw)
		require.NoError(t, err)
		assert.Equal(t, ReviewEvent(raw), event)
	}
	_, err := ParseReviewEvent("REJECT")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestTaskStatusAfterDecision(t *testing.T) {
	assert.Equal(t, domain.TaskStatusDone, TaskStatusAfterDecision(domain.ReviewStatusApproved))
	assert.Equal(t, domain.TaskStatusDoing, TaskStatusAfterDecision(domain.ReviewStatusChangesRequested))
}

func TestIsTerminalReviewStatus(t *testing.T) {
	assert.False(t, IsTerminalReviewStatus(domain.ReviewStatusPending))
	assert.True(t, IsTerminalReviewStatus(domain.ReviewStatusApproved))
	assert.True(t, IsTerminalReviewStatus(domain.ReviewStatusChangesRequested))
}
