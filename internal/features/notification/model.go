package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an in-app message for one recipient. Reference points at
// the record that produced it, e.g. an expense.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Company       primitive.ObjectID `bson:"company" json:"company"`
	Recipient     primitive.ObjectID `bson:"recipient" json:"recipient"`
	Title         string             `bson:"title" json:"title"`
	Message       string             `bson:"message" json:"message"`
	ReferenceType string             `bson:"reference_type,omitempty" json:"referenceType,omitempty"`
	ReferenceID   string             `bson:"reference_id,omitempty" json:"referenceId,omitempty"`
	IsRead        bool               `bson:"is_read" json:"isRead"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}
