package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation is immutable once written. There is no update or delete path.
type Donation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Donor      primitive.ObjectID `bson:"donor" json:"donor"`
	Campaign   primitive.ObjectID `bson:"campaign" json:"campaign"`
	Amount     float64            `bson:"amount" json:"amount"`
	Message    string             `bson:"message,omitempty" json:"message,omitempty"`
	Anonymous  bool               `bson:"anonymous" json:"anonymous"`
	PaymentRef string             `bson:"payment_reference" json:"payment_reference"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
