package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

// NotificationService delivers in-app messages to one user or to everyone.
type NotificationService interface {
	Send(ctx context.Context, targetUserID, message string) (*models.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	ListForUser(ctx context.Context, userID string) []*models.Notification
}

type notificationService struct {
	store *store.Store
}

func NewNotificationService(st *store.Store) NotificationService {
	return &notificationService{store: st}
}

func (s *notificationService) Send(ctx context.Context, targetUserID, message string) (*models.Notification, error) {
	if targetUserID != models.NotificationTargetAll {
		if _, ok := s.store.GetUser(targetUserID); !ok {
			return nil, &NotFoundError{Resource: "user", ID: targetUserID}
		}
	}
	notification := &models.Notification{
		ID:           uuid.NewString(),
		TargetUserID: targetUserID,
		Message:      message,
		Date:         time.Now(),
	}
	s.store.SaveNotification(ctx, notification)
	return notification, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	notification, ok := s.store.GetNotification(notificationID)
	if !ok {
		return &NotFoundError{Resource: "notification", ID: notificationID}
	}
	notification.Read = true
	s.store.SaveNotification(ctx, notification)
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) []*models.Notification {
	return s.store.ListNotificationsForUser(userID)
}
