package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types appended to a user's feed.
const (
	ActivityDonation       = "donation"
	ActivityCampaignCreate = "campaign_create"
	ActivityLevelUp        = "level_up"
	ActivityComment        = "comment"
)

// Activity is an append-only feed record.
type Activity struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user" json:"user"`
	Type      string              `bson:"type" json:"type"`
	Campaign  *primitive.ObjectID `bson:"campaign,omitempty" json:"campaign,omitempty"`
	Details   map[string]any      `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
}
