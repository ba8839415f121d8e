// Package notify records in-app notifications. Delivery is best effort:
// a failed write is logged and never fails the request that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/repository"
)

type Notifier struct {
	store  repository.Store
	logger *slog.Logger
}

func New(store repository.Store, logger *slog.Logger) *Notifier {
	return &Notifier{store: store, logger: logger}
}

// ReviewDecided tells the submitter and assignees how a review landed.
func (n *Notifier) ReviewDecided(ctx context.Context, recipients []string, review *domain.ReviewSubmission, task *domain.Task) {
	n.record(ctx, recipients, domain.NotificationReviewStatus, map[string]any{
		"reviewId":   review.ID,
		"taskId":     task.ID,
		"taskTitle":  task.Title,
		"decision":   review.Status,
		"reviewerId": review.ReviewerID,
	})
}

// ReviewRequested tells reviewers a task is waiting on them.
func (n *Notifier) ReviewRequested(ctx context.Context, recipients []string, review *domain.ReviewSubmission, task *domain.Task) {
	n.record(ctx, recipients, domain.NotificationReviewStatus, map[string]any{
		"reviewId":      review.ID,
		"taskId":        task.ID,
		"taskTitle":     task.Title,
		"decision":      review.Status,
		"submittedById": review.SubmittedByID,
	})
}

// TaskAssigned tells newly assigned users about their task.
func (n *Notifier) TaskAssigned(ctx context.Context, recipients []string, task *domain.Task) {
	n.record(ctx, recipients, domain.NotificationTaskAssigned, map[string]any{
		"taskId":    task.ID,
		"taskTitle": task.Title,
		"projectId": task.ProjectID,
	})
}

// ChatMention tells users they were @-mentioned in a message.
func (n *Notifier) ChatMention(ctx context.Context, recipients []string, channel *domain.Channel, message *domain.Message) {
	n.record(ctx, recipients, domain.NotificationChatMention, map[string]any{
		"channelId":   channel.ID,
		"channelName": channel.Name,
		"messageId":   message.ID,
		"authorId":    message.AuthorID,
	})
}

// CalendarEvent tells a user a calendar push happened on their behalf.
func (n *Notifier) CalendarEvent(ctx context.Context, recipients []string, payload map[string]any) {
	n.record(ctx, recipients, domain.NotificationCalendarEvent, payload)
}

func (n *Notifier) record(ctx context.Context, recipients []string, kind domain.NotificationType, payload map[string]any) {
	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("marshal notification payload", "type", kind, "error", err)
		return
	}
	now := time.Now().UTC()
	notifications := make([]domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      kind,
			Payload:   body,
			CreatedAt: now,
		})
	}
	if err := n.store.Notifications().CreateBatch(ctx, notifications); err != nil {
		n.logger.Error("record notifications", "type", kind, "recipients", len(recipients), "error", err)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
