package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign statuses. Completed and cancelled are terminal.
const (
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignCancelled = "cancelled"
)

// Donor is a donation entry embedded on the campaign document.
type Donor struct {
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Amount    float64            `bson:"amount" json:"amount"`
	Anonymous bool               `bson:"anonymous" json:"anonymous"`
	Date      time.Time          `bson:"date" json:"date"`
}

type Campaign struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Creator       primitive.ObjectID   `bson:"creator" json:"creator"`
	TargetAmount  float64              `bson:"target_amount" json:"target_amount"`
	CurrentAmount float64              `bson:"current_amount" json:"current_amount"`
	Status        string               `bson:"status" json:"status"`
	Deadline      time.Time            `bson:"deadline" json:"deadline"`
	Category      primitive.ObjectID   `bson:"category,omitempty" json:"category,omitempty"`
	Images        []string             `bson:"images" json:"images"`
	Donors        []Donor              `bson:"donors" json:"donors"`
	Comments      []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`

	// Derived fields, filled on reads
	Progress float64 `bson:"-" json:"progress"`
	DaysLeft int     `bson:"-" json:"days_left"`
}

// NextStatus evaluates the campaign lifecycle rule after an amount-changing
// write. Terminal states are absorbing: applying the rule to a completed or
// cancelled campaign always returns the same status. The target check runs
// before the deadline check, so a campaign funded at the buzzer completes.
func NextStatus(status string, currentAmount, targetAmount float64, deadline, now time.Time) string {
	if status != CampaignActive {
		return status
	}
	if currentAmount >= targetAmount {
		return CampaignCompleted
	}
	if now.After(deadline) {
		return CampaignCancelled
	}
	return CampaignActive
}

// ComputeDerived fills the progress percentage and days-left fields.
func (c *Campaign) ComputeDerived(now time.Time) {
	if c.TargetAmount > 0 {
		c.Progress = math.Min(c.CurrentAmount/c.TargetAmount*100, 100)
	}
	c.DaysLeft = int(math.Ceil(c.Deadline.Sub(now).Hours() / 24))
	if c.DaysLeft < 0 {
		c.DaysLeft = 0
	}
}
