package workflow

import (
	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

// ReviewEvent drives the review machine.
type ReviewEvent string

const (
	ReviewEventApprove        ReviewEvent = "APPROVE"
	ReviewEventRequestChanges ReviewEvent = "REQUEST_CHANGES"
)

func ParseReviewEvent(s string) (ReviewEvent, error) {
	switch ReviewEvent(s) {
	case ReviewEventApprove, ReviewEventRequestChanges:
		return ReviewEvent(s), nil
	}
	return "", apperr.Validationf("unknown review event %q", s)
}

type reviewKey struct {
	state domain.ReviewStatus
	event ReviewEvent
}

// reviewTransitions is the (state, event) → state table. APPROVED and
// CHANGES_REQUESTED are terminal.
var reviewTransitions = map[reviewKey]domain.ReviewStatus{
	{domain.ReviewStatusPending, ReviewEventApprove}:        domain.ReviewStatusApproved,
	{domain.ReviewStatusPending, ReviewEventRequestChanges}: domain.ReviewStatusChangesRequested,
}

// TransitionReview validates an event against the current review state.
// Events on an already-decided review fail with AlreadyDecided rather
// than a generic invalid transition, since that is the only way to fall
// off the table with a known state.
func TransitionReview(current domain.ReviewStatus, event ReviewEvent) (domain.ReviewStatus, error) {
	if next, ok := reviewTransitions[reviewKey{current, event}]; ok {
		return next, nil
	}
	if current == domain.ReviewStatusApproved || current == domain.ReviewStatusChangesRequested {
		return "", &apperr.Error{
			Kind:    apperr.KindAlreadyDecided,
			Message: "review already " + string(current),
		}
	}
	return "", apperr.InvalidTransition(string(current), string(event))
}

// TaskStatusAfterDecision is the coupled side effect on the linked task:
// approval completes the task, requested changes send it back to DOING.
func TaskStatusAfterDecision(decision domain.ReviewStatus) domain.TaskStatus {
	if decision == domain.ReviewStatusApproved {
		return domain.TaskStatusDone
	}
	return domain.TaskStatusDoing
}

// IsTerminalReviewStatus reports whether the review accepts no further
// events.
func IsTerminalReviewStatus(status domain.ReviewStatus) bool {
	return status != domain.ReviewStatusPending
}
