// Package workflow holds the task and review state machines as explicit
// transition tables. The machines validate and return next states; they
// never touch storage.
package workflow

import (
	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

// taskTransitions maps each status to the set of legal next statuses.
var taskTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusTodo:    {domain.TaskStatusDoing},
	domain.TaskStatusDoing:   {domain.TaskStatusReview},
	domain.TaskStatusReview:  {domain.TaskStatusDone, domain.TaskStatusBlocked},
	domain.TaskStatusDone:    {},
	domain.TaskStatusBlocked: {domain.TaskStatusDoing},
}

// TransitionTask validates a requested status change. A self-transition
// is always a legal no-op. The caller persists the returned status.
func TransitionTask(current, requested domain.TaskStatus) (domain.TaskStatus, error) {
	allowed, ok := taskTransitions[current]
	if !ok {
		return "", apperr.InvalidTransition(string(current), string(requested))
	}
	if requested == current {
		return current, nil
	}
	for _, next := range allowed {
		if next == requested {
			return requested, nil
		}
	}
	return "", apperr.InvalidTransition(string(current), string(requested))
}

// TaskStatuses enumerates every status in the table, for exhaustive
// validation at boundaries.
func TaskStatuses() []domain.TaskStatus {
	return []domain.TaskStatus{
		domain.TaskStatusTodo,
		domain.TaskStatusDoing,
		domain.TaskStatusReview,
		domain.TaskStatusDone,
		domain.TaskStatusBlocked,
	}
}

// IsTerminalTaskStatus reports whether no outbound transitions remain.
func IsTerminalTaskStatus(status domain.TaskStatus) bool {
	return len(taskTransitions[status]) == 0
}
