package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Side-effect kinds fanned out after a donation or comment write.
const (
	EffectAwardPoints  = "award_points"
	EffectActivity     = "activity"
	EffectNotification = "notification"
)

// Side-effect statuses.
const (
	EffectPending = "pending"
	EffectDone    = "done"
	EffectFailed  = "failed"
)

// SideEffect is a persisted outbox record. Each downstream mutation of a
// donation or comment write is recorded here before it runs, so a failed
// step can be retried without touching the primary write.
type SideEffect struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      string             `bson:"kind" json:"kind"`
	Payload   bson.M             `bson:"payload" json:"payload"`
	Status    string             `bson:"status" json:"status"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	LastError string             `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
