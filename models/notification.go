package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationDonation = "donation"
	NotificationComment  = "comment"
	NotificationSystem   = "system"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user" json:"user"` // recipient
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	Campaign  *primitive.ObjectID `bson:"campaign,omitempty" json:"campaign,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
