package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report statuses.
const (
	ReportPending  = "pending"
	ReportReviewed = "reviewed"
	ReportResolved = "resolved"
)

// Report is a user-filed complaint against a campaign, comment or user,
// worked through the admin dashboard.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReporterID  primitive.ObjectID `bson:"reporter" json:"reporter"`
	ContentType string             `bson:"content_type" json:"content_type"` // user, campaign, comment
	ContentID   primitive.ObjectID `bson:"content_id" json:"content_id"`
	Reason      string             `bson:"reason" json:"reason"`
	Status      string             `bson:"status" json:"status"`
	AdminNotes  string             `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
