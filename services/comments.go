package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/fundraiser-go/models"
)

// CommentService mirrors the donation pipeline without the amount and level
// mutations: persist the comment, then fan out activity and the conditional
// creator notification.
type CommentService struct {
	Campaigns CampaignStore
	Comments  CommentStore
	Effects   *EffectRunner
}

type CommentInput struct {
	UserID   primitive.ObjectID
	Campaign primitive.ObjectID
	Content  string
}

type CommentResult struct {
	Comment  *models.Comment `json:"comment"`
	Warnings []string        `json:"warnings,omitempty"`
}

func (s *CommentService) Create(ctx context.Context, in CommentInput) (*CommentResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	campaign, err := s.Campaigns.Get(ctx, in.Campaign)
	if err != nil {
		return nil, err
	}

	now := s.Effects.now()
	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    in.UserID,
		Campaign:  in.Campaign,
		Content:   strings.TrimSpace(in.Content),
		Likes:     []primitive.ObjectID{},
		Replies:   []models.Reply{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Comments.Insert(ctx, comment); err != nil {
		return nil, err
	}

	result := &CommentResult{Comment: comment}

	if err := s.Campaigns.PushComment(ctx, in.Campaign, comment.ID); err != nil {
		log.Printf("push comment %s onto campaign %s: %v", comment.ID.Hex(), in.Campaign.Hex(), err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("campaign link failed: %v", err))
	}

	preview := comment.Content
	if len(preview) > 100 {
		preview = preview[:100]
	}
	if err := s.Effects.Dispatch(ctx, models.EffectActivity, bson.M{
		"user":     in.UserID.Hex(),
		"type":     models.ActivityComment,
		"campaign": in.Campaign.Hex(),
		"details":  bson.M{"content": preview},
	}); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("activity record failed: %v", err))
	}

	// Self-comments do not notify.
	if campaign.Creator != in.UserID {
		if err := s.Effects.Dispatch(ctx, models.EffectNotification, bson.M{
			"user":     campaign.Creator.Hex(),
			"type":     models.NotificationComment,
			"title":    "New comment",
			"message":  fmt.Sprintf("Someone commented on your campaign %q", campaign.Title),
			"campaign": campaign.ID.Hex(),
		}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("notification failed: %v", err))
		}
	}

	return result, nil
}

// NewCommentService wires the Mongo-backed stores. Mailer may be nil.
func NewCommentService(db *mongo.Database, mailer func(to, subject, body string) error) *CommentService {
	return &CommentService{
		Campaigns: &MongoCampaignStore{DB: db},
		Comments:  &MongoCommentStore{DB: db},
		Effects:   NewEffectRunner(db, mailer),
	}
}
