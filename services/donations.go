package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/fundraiser-go/models"
)

// DonationService runs the donation pipeline: gate on campaign status,
// persist the donation, apply the amount atomically, then fan out the
// best-effort side effects (points/level, activity, creator notification)
// through the outbox.
type DonationService struct {
	Campaigns CampaignStore
	Donations DonationStore
	Effects   *EffectRunner
}

type DonationInput struct {
	Donor     primitive.ObjectID
	Campaign  primitive.ObjectID
	Amount    float64
	Message   string
	Anonymous bool
}

type DonationResult struct {
	Donation *models.Donation `json:"donation"`
	Campaign *models.Campaign `json:"campaign"`
	// Completed is true when this donation pushed the campaign over its
	// target and performed the active -> completed transition.
	Completed bool `json:"completed"`
	// Warnings lists side-effect steps that failed and stayed queued for
	// retry. The primary writes above are never rolled back.
	Warnings []string `json:"warnings,omitempty"`
}

func (s *DonationService) Create(ctx context.Context, in DonationInput) (*DonationResult, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}

	campaign, err := s.Campaigns.Get(ctx, in.Campaign)
	if err != nil {
		return nil, err
	}
	now := s.Effects.now()
	if campaign.Status == models.CampaignActive && now.After(campaign.Deadline) {
		// Deadline passed: cancel opportunistically, then reject.
		if _, err := s.Campaigns.TransitionStatus(ctx, campaign.ID, models.CampaignActive, models.CampaignCancelled); err != nil {
			log.Printf("cancel expired campaign %s: %v", campaign.ID.Hex(), err)
		}
		return nil, ErrCampaignNotActive
	}
	if campaign.Status != models.CampaignActive {
		return nil, ErrCampaignNotActive
	}

	donation := &models.Donation{
		ID:         primitive.NewObjectID(),
		Donor:      in.Donor,
		Campaign:   in.Campaign,
		Amount:     in.Amount,
		Message:    in.Message,
		Anonymous:  in.Anonymous,
		PaymentRef: uuid.NewString(),
		CreatedAt:  now,
	}
	if err := s.Donations.Insert(ctx, donation); err != nil {
		return nil, err
	}

	updated, err := s.Campaigns.ApplyDonation(ctx, in.Campaign, models.Donor{
		UserID:    in.Donor,
		Amount:    in.Amount,
		Anonymous: in.Anonymous,
		Date:      now,
	})
	if err != nil {
		// The campaign went terminal between the gate and the apply. The
		// donation record must not survive a rejected donation.
		if delErr := s.Donations.Delete(ctx, donation.ID); delErr != nil {
			log.Printf("compensating delete of donation %s failed: %v", donation.ID.Hex(), delErr)
		}
		return nil, err
	}

	result := &DonationResult{Donation: donation, Campaign: updated}

	if models.NextStatus(updated.Status, updated.CurrentAmount, updated.TargetAmount, updated.Deadline, now) == models.CampaignCompleted {
		// Conditional flip: exactly one concurrent donation wins.
		flipped, err := s.Campaigns.TransitionStatus(ctx, updated.ID, models.CampaignActive, models.CampaignCompleted)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("status update failed: %v", err))
		} else if flipped {
			result.Completed = true
			updated.Status = models.CampaignCompleted
		}
	}

	s.fanOut(ctx, donation, updated, result)
	return result, nil
}

// fanOut runs the best-effort steps in order. Failures become warnings and
// stay in the outbox; nothing here rolls back the donation.
func (s *DonationService) fanOut(ctx context.Context, donation *models.Donation, campaign *models.Campaign, result *DonationResult) {
	if err := s.Effects.Dispatch(ctx, models.EffectAwardPoints, bson.M{
		"user":     donation.Donor.Hex(),
		"donation": donation.ID.Hex(),
		"points":   models.PointsPerDonation,
	}); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("points credit failed: %v", err))
	}

	if err := s.Effects.Dispatch(ctx, models.EffectActivity, bson.M{
		"user":     donation.Donor.Hex(),
		"type":     models.ActivityDonation,
		"campaign": donation.Campaign.Hex(),
		"details": bson.M{
			"amount":    donation.Amount,
			"anonymous": donation.Anonymous,
		},
	}); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("activity record failed: %v", err))
	}

	// Creators are not notified about their own donations.
	if campaign.Creator != donation.Donor {
		message := fmt.Sprintf("Your campaign %q received a donation of %.2f", campaign.Title, donation.Amount)
		if donation.Anonymous {
			message = fmt.Sprintf("Your campaign %q received an anonymous donation", campaign.Title)
		}
		if err := s.Effects.Dispatch(ctx, models.EffectNotification, bson.M{
			"user":     campaign.Creator.Hex(),
			"type":     models.NotificationDonation,
			"title":    "New donation",
			"message":  message,
			"campaign": campaign.ID.Hex(),
		}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("notification failed: %v", err))
		}
	}

	if result.Completed {
		if err := s.Effects.Dispatch(ctx, models.EffectNotification, bson.M{
			"user":     campaign.Creator.Hex(),
			"type":     models.NotificationSystem,
			"title":    "Campaign funded",
			"message":  fmt.Sprintf("Your campaign %q reached its target of %.2f", campaign.Title, campaign.TargetAmount),
			"campaign": campaign.ID.Hex(),
		}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("completion notification failed: %v", err))
		}
	}
}

// NewDonationService wires the Mongo-backed stores. Mailer may be nil.
func NewDonationService(db *mongo.Database, mailer func(to, subject, body string) error) *DonationService {
	return &DonationService{
		Campaigns: &MongoCampaignStore{DB: db},
		Donations: &MongoDonationStore{DB: db},
		Effects:   NewEffectRunner(db, mailer),
	}
}

// NewEffectRunner wires a Mongo-backed effect runner. Mailer may be nil.
func NewEffectRunner(db *mongo.Database, mailer func(to, subject, body string) error) *EffectRunner {
	return &EffectRunner{
		Users:         &MongoUserStore{DB: db},
		Activities:    &MongoActivityStore{DB: db},
		Notifications: &MongoNotificationStore{DB: db},
		Outbox:        &MongoOutboxStore{DB: db},
		Mailer:        mailer,
		Now:           time.Now,
	}
}
