package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solacejournal/solace-backend/internal/database"
	"github.com/solacejournal/solace-backend/internal/models"
)

// NotificationRecord is one dispatched notification in the append-only log.
// Day carries the recipient's calendar date ("2006-01-02") so the dedup
// query is a plain equality match instead of a range scan.
type NotificationRecord struct {
	ID       primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	UserID   string                  `bson:"user_id" json:"user_id"`
	Type     models.NotificationType `bson:"type" json:"type"`
	Day      string                  `bson:"day" json:"day"`
	Metadata string                  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	SentAt   time.Time               `bson:"sent_at" json:"sent_at"`
}

const notificationLogCollection = "notification_log"

// EnsureNotificationIndexes configures indexes for the notification log.
// Called on startup from main after Mongo has connected.
func EnsureNotificationIndexes(ctx context.Context) error {
	col := database.DB.Collection(notificationLogCollection)

	// Compound index on (user_id, type, day) backing the dedup lookup.
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "type", Value: 1},
				{Key: "day", Value: 1},
			},
			Options: options.Index().SetName("idx_user_type_day"),
		},
		{
			Keys:    bson.D{{Key: "sent_at", Value: -1}},
			Options: options.Index().SetName("idx_sent_at"),
		},
	}

	for _, m := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// mongoNotificationLog is the production notification log store.
type mongoNotificationLog struct{}

// NewNotificationLog returns the Mongo-backed log used by the dispatcher.
func NewNotificationLog() NotificationLogStore {
	return mongoNotificationLog{}
}

// NotifiedOn reports whether a notification of this type was already logged
// for the user on the given day.
func (mongoNotificationLog) NotifiedOn(ctx context.Context, userID string, typ models.NotificationType, day string) (bool, error) {
	count, err := database.DB.Collection(notificationLogCollection).CountDocuments(ctx, bson.M{
		"user_id": userID,
		"type":    typ,
		"day":     day,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record appends a log row for a delivered notification.
func (mongoNotificationLog) Record(ctx context.Context, userID string, typ models.NotificationType, metadata string, sentAt time.Time) error {
	rec := NotificationRecord{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		Type:     typ,
		Day:      sentAt.Format("2006-01-02"),
		Metadata: metadata,
		SentAt:   sentAt,
	}
	_, err := database.DB.Collection(notificationLogCollection).InsertOne(ctx, rec)
	return err
}

// RecentNotifications returns the latest log rows for a user, newest first.
func RecentNotifications(ctx context.Context, userID string, limit int64) ([]NotificationRecord, error) {
	findOptions := options.Find().
		SetSort(bson.M{"sent_at": -1}).
		SetLimit(limit)

	cursor, err := database.DB.Collection(notificationLogCollection).Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return []NotificationRecord{}, nil
	}
	defer cursor.Close(ctx)

	var records []NotificationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
