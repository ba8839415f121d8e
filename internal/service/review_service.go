package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/metrics"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/internal/workflow"
)

// ReviewService couples review lifecycle changes to the linked task.
// Submit and Decide each run inside one transaction: the review row and
// the task status either both change or neither does.
type ReviewService struct {
	store    repository.Store
	rbac     *rbac.Table
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewReviewService(store repository.Store, table *rbac.Table, notifier *notify.Notifier, m *metrics.Metrics, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, rbac: table, notifier: notifier, metrics: m, logger: logger}
}

type SubmitReviewInput struct {
	TaskID     string  `json:"taskId" binding:"required"`
	ReviewerID *string `json:"reviewerId"`
	Notes      *string `json:"notes"`
}

// Submit creates a PENDING review for a DOING task and moves the task
// to REVIEW in the same transaction. A task with an active review
// cannot be submitted again. The submitter may designate a reviewer;
// that user gets the review-requested notification instead of the
// whole project team.
func (s *ReviewService) Submit(ctx context.Context, auth rbac.AuthContext, input SubmitReviewInput) (*domain.ReviewSubmission, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermReviewWrite); err != nil {
		return nil, err
	}

	var review *domain.ReviewSubmission
	var task *domain.Task
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		task, err = tx.Tasks().GetByID(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if task.Status != domain.TaskStatusDoing {
			return apperr.InvalidState("task must be in DOING to submit for review")
		}
		pending, err := tx.Reviews().HasPending(ctx, task.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		if pending {
			return apperr.InvalidState("task already has an active review")
		}
		if input.ReviewerID != nil {
			if _, err := tx.Users().GetByID(ctx, *input.ReviewerID); err != nil {
				return apperr.Validationf("reviewer %s does not exist", *input.ReviewerID)
			}
		}

		now := time.Now().UTC()
		review = &domain.ReviewSubmission{
			ID:            uuid.NewString(),
			ProjectID:     task.ProjectID,
			TaskID:        task.ID,
			Status:        domain.ReviewStatusPending,
			SubmittedByID: auth.UserID,
			ReviewerID:    input.ReviewerID,
			Notes:         input.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return apperr.Internal(err)
		}
		return tx.Tasks().UpdateStatus(ctx, task.ID, domain.TaskStatusDoing, domain.TaskStatusReview)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TransitionApplied("task", string(domain.TaskStatusReview))
	// Notify after commit; failures never surface. A designated reviewer
	// receives the single request, otherwise the project team does.
	if review.ReviewerID != nil {
		s.notifier.ReviewRequested(ctx, withoutActor([]string{*review.ReviewerID}, auth.UserID), review, task)
		return review, nil
	}
	scope, serr := s.store.Projects().AccessScope(ctx, task.ProjectID)
	if serr == nil {
		s.notifier.ReviewRequested(ctx, withoutActor(scope.MemberIDs, auth.UserID), review, task)
	} else {
		logError(s.logger, "load review recipients", serr)
	}
	return review, nil
}

type DecideReviewInput struct {
	Event string  `json:"event" binding:"required"`
	Notes *string `json:"notes"`
}

// Decide applies APPROVE or REQUEST_CHANGES to a PENDING review. The
// review row and the linked task's status change atomically: approval
// completes the task, requested changes send it back to DOING. Both
// writes are compare-and-swaps, so a concurrent decision loses cleanly
// with AlreadyDecided.
func (s *ReviewService) Decide(ctx context.Context, auth rbac.AuthContext, reviewID string, input DecideReviewInput) (*domain.ReviewSubmission, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermReviewWrite); err != nil {
		return nil, err
	}
	event, err := workflow.ParseReviewEvent(input.Event)
	if err != nil {
		return nil, err
	}

	var decided *domain.ReviewSubmission
	var task *domain.Task
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		review, err := tx.Reviews().GetByID(ctx, reviewID)
		if err != nil {
			return err
		}
		decision, err := workflow.TransitionReview(review.Status, event)
		if err != nil {
			return err
		}
		if review.SubmittedByID == auth.UserID && auth.Role != domain.RoleAdmin {
			return apperr.Authorization("submitter cannot decide their own review")
		}

		now := time.Now().UTC()
		decided, err = tx.Reviews().Decide(ctx, reviewID, decision, auth.UserID, input.Notes, now)
		if err != nil {
			return err
		}

		task, err = tx.Tasks().GetByID(ctx, review.TaskID)
		if err != nil {
			return err
		}
		nextStatus := workflow.TaskStatusAfterDecision(decision)
		if task.Status != domain.TaskStatusReview {
			return apperr.Conflict("task left REVIEW while deciding")
		}
		if err := tx.Tasks().UpdateStatus(ctx, task.ID, domain.TaskStatusReview, nextStatus); err != nil {
			return err
		}
		task.Status = nextStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TransitionApplied("review", string(decided.Status))
	s.metrics.TransitionApplied("task", string(task.Status))
	recipients := append([]string{decided.SubmittedByID}, task.AssigneeIDs...)
	s.notifier.ReviewDecided(ctx, withoutActor(recipients, auth.UserID), decided, task)
	return decided, nil
}

func (s *ReviewService) Get(ctx context.Context, auth rbac.AuthContext, id string) (*domain.ReviewSubmission, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskRead); err != nil {
		return nil, err
	}
	review, err := s.store.Reviews().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeProjectAccess(ctx, s.store, auth, review.ProjectID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListByTask(ctx context.Context, auth rbac.AuthContext, taskID string) ([]domain.ReviewSubmission, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTaskRead); err != nil {
		return nil, err
	}
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeProjectAccess(ctx, s.store, auth, task.ProjectID); err != nil {
		return nil, err
	}
	return s.store.Reviews().ListByTask(ctx, taskID)
}
