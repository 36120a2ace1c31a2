package notification

import (
	"context"
	"time"

	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	InsertMany(ctx context.Context, notifications []Notification) error
	ListByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, limit int64) ([]Notification, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, recipient primitive.ObjectID, id string) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error
}

type NotificationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewNotificationRepository(mongodb *database.MongodbDB) NotificationRepository {
	return &NotificationRepositoryImpl{
		Collection: mongodb.DB.Collection("notifications"),
	}
}

func (r *NotificationRepositoryImpl) InsertMany(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		if notifications[i].CreatedAt.IsZero() {
			notifications[i].CreatedAt = time.Now()
		}
		docs[i] = notifications[i]
	}
	_, err := r.Collection.InsertMany(ctx, docs)
	return err
}

func (r *NotificationRepositoryImpl) ListByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, limit int64) ([]Notification, error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["is_read"] = false
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := make([]Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepositoryImpl) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, recipient primitive.ObjectID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "recipient": recipient},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error {
	_, err := r.Collection.UpdateMany(ctx,
		bson.M{"recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}
