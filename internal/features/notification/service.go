package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NotificationService interface {
	// Notify fans one message out to every listed user. Delivery is best
	// effort and never fails the calling operation.
	Notify(ctx context.Context, companyID primitive.ObjectID, userIDs []primitive.ObjectID, title, message, refType, refID string)
	List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationServiceImpl struct {
	Repo   NotificationRepository
	Logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{Repo: repo, Logger: logger}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, companyID primitive.ObjectID, userIDs []primitive.ObjectID, title, message, refType, refID string) {
	if len(userIDs) == 0 {
		return
	}
	notifications := make([]Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		notifications = append(notifications, Notification{
			Company:       companyID,
			Recipient:     uid,
			Title:         title,
			Message:       message,
			ReferenceType: refType,
			ReferenceID:   refID,
		})
	}
	if err := s.Repo.InsertMany(ctx, notifications); err != nil {
		s.Logger.Warn("failed to deliver notifications",
			zap.String("title", title),
			zap.Int("recipients", len(userIDs)),
			zap.Error(err))
	}
}

func (s *NotificationServiceImpl) List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]Notification, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListByRecipient(ctx, uid, unreadOnly, limit)
}

func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int64, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}
	return s.Repo.CountUnread(ctx, uid)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	return s.Repo.MarkRead(ctx, uid, notificationID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	return s.Repo.MarkAllRead(ctx, uid)
}
