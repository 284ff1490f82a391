package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/fundraiser-go/models"
)

// Store interfaces consumed by the dispatchers. The Mongo implementations
// live in mongo.go; the tests use in-memory fakes.

type CampaignStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	// ApplyDonation atomically adds the amount and donor entry to an active
	// campaign and returns the updated document. Returns ErrCampaignNotActive
	// if the campaign is no longer active, ErrNotFound if it is gone.
	ApplyDonation(ctx context.Context, id primitive.ObjectID, donor models.Donor) (*models.Campaign, error)
	// TransitionStatus flips the status from -> to. Returns true only when
	// this call performed the transition.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error)
	PushComment(ctx context.Context, campaignID, commentID primitive.ObjectID) error
}

type UserStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// CreditDonation atomically adds points and the donation reference and
	// returns the updated user.
	CreditDonation(ctx context.Context, id primitive.ObjectID, points int, donationID primitive.ObjectID) (*models.User, error)
	SetLevel(ctx context.Context, id primitive.ObjectID, level string) error
}

type DonationStore interface {
	Insert(ctx context.Context, d *models.Donation) error
	// Delete exists only to compensate a donation that lost the race against
	// a status transition. There is no delete endpoint.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CommentStore interface {
	Insert(ctx context.Context, c *models.Comment) error
}

type ActivityStore interface {
	Insert(ctx context.Context, a *models.Activity) error
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type OutboxStore interface {
	Insert(ctx context.Context, e *models.SideEffect) error
	MarkDone(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, cause error) error
	ListFailed(ctx context.Context) ([]models.SideEffect, error)
}
