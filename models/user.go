package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User levels, awarded from lifetime points.
const (
	LevelBronze   = "Bronze"
	LevelSilver   = "Silver"
	LevelGold     = "Gold"
	LevelPlatinum = "Platinum"
)

// Point thresholds for each level.
const (
	SilverThreshold   = 1000
	GoldThreshold     = 5000
	PlatinumThreshold = 10000
)

// PointsPerDonation is credited to the donor on every donation.
const PointsPerDonation = 50

type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username         string               `bson:"username" json:"username"`
	Email            string               `bson:"email" json:"email"`
	Password         string               `bson:"password" json:"-"`
	FirstName        string               `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName         string               `bson:"last_name,omitempty" json:"last_name,omitempty"`
	ProfileImage     string               `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	Role             string               `bson:"role" json:"role"` // user, admin
	Level            string               `bson:"level" json:"level"`
	Points           int                  `bson:"points" json:"points"`
	CampaignsCreated []primitive.ObjectID `bson:"campaigns_created" json:"campaigns_created"`
	DonationsMade    []primitive.ObjectID `bson:"donations_made" json:"donations_made"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updated_at"`
}

// LevelForPoints maps lifetime points to a level. Points never decrease, so
// the computed level never decreases either.
func LevelForPoints(points int) string {
	switch {
	case points >= PlatinumThreshold:
		return LevelPlatinum
	case points >= GoldThreshold:
		return LevelGold
	case points >= SilverThreshold:
		return LevelSilver
	default:
		return LevelBronze
	}
}
