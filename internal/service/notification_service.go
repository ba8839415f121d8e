package service

import (
	"context"
	"time"

	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
)

// NotificationService exposes each user's own notification feed.
type NotificationService struct {
	store repository.Store
	rbac  *rbac.Table
}

func NewNotificationService(store repository.Store, table *rbac.Table) *NotificationService {
	return &NotificationService{store: store, rbac: table}
}

func (s *NotificationService) List(ctx context.Context, auth rbac.AuthContext) ([]domain.Notification, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermNotificationRead); err != nil {
		return nil, err
	}
	return s.store.Notifications().ListByUser(ctx, auth.UserID)
}

// MarkRead marks the given ids, or every unread notification when ids
// is empty. Only the caller's own feed is touched.
func (s *NotificationService) MarkRead(ctx context.Context, auth rbac.AuthContext, ids []string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermNotificationRead); err != nil {
		return err
	}
	return s.store.Notifications().MarkRead(ctx, auth.UserID, ids, time.Now().UTC())
}
