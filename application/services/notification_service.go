package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
)

// unreadCountTTL is how long a cached unread count stays fresh, in seconds
const unreadCountTTL = 30

// NotificationService manages the per-recipient notification log: appending
// records on behalf of other services and serving the recipient's read side.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
	cache            ports.Cache
	logger           *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo ports.NotificationRepository,
	cache ports.Cache,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		cache:            cache,
		logger:           logger,
	}
}

// Notify appends a notification to recipient's log. The append is durable and
// its failure propagates to the caller.
func (s *NotificationService) Notify(
	ctx context.Context,
	recipient valueobjects.AccountID,
	notifType entities.NotificationType,
	relatedUser valueobjects.AccountID,
	relatedPost string,
) (*entities.Notification, error) {
	notification, err := entities.NewNotification(recipient, notifType, relatedUser, relatedPost)
	if err != nil {
		return nil, err
	}

	if err := s.notificationRepo.Append(ctx, notification); err != nil {
		return nil, err
	}

	s.invalidateUnreadCount(ctx, recipient)

	s.logger.Debug("Notification appended",
		zap.String("notificationID", notification.ID()),
		zap.String("recipient", recipient.String()),
		zap.String("type", string(notifType)),
	)

	return notification, nil
}

// List returns one page of the recipient's notifications, newest first
func (s *NotificationService) List(
	ctx context.Context,
	recipient valueobjects.AccountID,
	limit int,
	cursor string,
) ([]*entities.Notification, string, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipient, limit, cursor)
}

// UnreadCount returns the recipient's unread notification count, served from
// cache when a fresh entry exists
func (s *NotificationService) UnreadCount(ctx context.Context, recipient valueobjects.AccountID) (int, error) {
	key := unreadCountKey(recipient)
	if cached, ok := s.cache.Get(ctx, key); ok {
		if count, ok := cached.(int); ok {
			return count, nil
		}
	}

	count, err := s.notificationRepo.CountUnread(ctx, recipient)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, count, unreadCountTTL); err != nil {
		s.logger.Warn("Failed to cache unread count",
			zap.String("recipient", recipient.String()), zap.Error(err))
	}

	return count, nil
}

// MarkRead marks one notification as read on behalf of actor
func (s *NotificationService) MarkRead(ctx context.Context, actor valueobjects.AccountID, notificationID string) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}

	if err := notification.MarkRead(actor); err != nil {
		return err
	}

	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return err
	}

	s.invalidateUnreadCount(ctx, actor)
	return nil
}

func (s *NotificationService) invalidateUnreadCount(ctx context.Context, recipient valueobjects.AccountID) {
	if err := s.cache.Delete(ctx, unreadCountKey(recipient)); err != nil {
		s.logger.Warn("Failed to invalidate unread count cache",
			zap.String("recipient", recipient.String()), zap.Error(err))
	}
}

func unreadCountKey(recipient valueobjects.AccountID) string {
	return fmt.Sprintf("notifications:unread:%s", recipient.String())
}
