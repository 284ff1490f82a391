package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/fundraiser-go/models"
)

// Mongo-backed stores. Campaign amounts and user points are mutated with
// server-side $inc through FindOneAndUpdate, never read-modify-write, so
// concurrent donations cannot lose an increment.

type MongoCampaignStore struct {
	DB *mongo.Database
}

func (s *MongoCampaignStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.DB.Collection("campaigns").FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: campaign", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (s *MongoCampaignStore) ApplyDonation(ctx context.Context, id primitive.ObjectID, donor models.Donor) (*models.Campaign, error) {
	var updated models.Campaign
	err := s.DB.Collection("campaigns").FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.CampaignActive},
		bson.M{
			"$inc":  bson.M{"current_amount": donor.Amount},
			"$push": bson.M{"donors": donor},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Missing or no longer active; look again to tell which.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrCampaignNotActive
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoCampaignStore) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	res, err := s.DB.Collection("campaigns").UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoCampaignStore) PushComment(ctx context.Context, campaignID, commentID primitive.ObjectID) error {
	res, err := s.DB.Collection("campaigns").UpdateOne(ctx,
		bson.M{"_id": campaignID},
		bson.M{"$push": bson.M{"comments": commentID}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: campaign", ErrNotFound)
	}
	return nil
}

type MongoUserStore struct {
	DB *mongo.Database
}

func (s *MongoUserStore) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) CreditDonation(ctx context.Context, id primitive.ObjectID, points int, donationID primitive.ObjectID) (*models.User, error) {
	var updated models.User
	err := s.DB.Collection("users").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc":  bson.M{"points": points},
			"$push": bson.M{"donations_made": donationID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoUserStore) SetLevel(ctx context.Context, id primitive.ObjectID, level string) error {
	_, err := s.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"level": level, "updated_at": time.Now()}},
	)
	return err
}

type MongoDonationStore struct {
	DB *mongo.Database
}

func (s *MongoDonationStore) Insert(ctx context.Context, d *models.Donation) error {
	_, err := s.DB.Collection("donations").InsertOne(ctx, d)
	return err
}

func (s *MongoDonationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.DB.Collection("donations").DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type MongoCommentStore struct {
	DB *mongo.Database
}

func (s *MongoCommentStore) Insert(ctx context.Context, c *models.Comment) error {
	_, err := s.DB.Collection("comments").InsertOne(ctx, c)
	return err
}

type MongoActivityStore struct {
	DB *mongo.Database
}

func (s *MongoActivityStore) Insert(ctx context.Context, a *models.Activity) error {
	_, err := s.DB.Collection("activities").InsertOne(ctx, a)
	return err
}

type MongoNotificationStore struct {
	DB *mongo.Database
}

func (s *MongoNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	_, err := s.DB.Collection("notifications").InsertOne(ctx, n)
	return err
}

type MongoOutboxStore struct {
	DB *mongo.Database
}

func (s *MongoOutboxStore) Insert(ctx context.Context, e *models.SideEffect) error {
	_, err := s.DB.Collection("side_effects").InsertOne(ctx, e)
	return err
}

func (s *MongoOutboxStore) MarkDone(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.DB.Collection("side_effects").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{"status": models.EffectDone, "last_error": "", "updated_at": time.Now()},
			"$inc": bson.M{"attempts": 1},
		},
	)
	return err
}

func (s *MongoOutboxStore) MarkFailed(ctx context.Context, id primitive.ObjectID, cause error) error {
	_, err := s.DB.Collection("side_effects").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{"status": models.EffectFailed, "last_error": cause.Error(), "updated_at": time.Now()},
			"$inc": bson.M{"attempts": 1},
		},
	)
	return err
}

func (s *MongoOutboxStore) ListFailed(ctx context.Context) ([]models.SideEffect, error) {
	cursor, err := s.DB.Collection("side_effects").Find(ctx, bson.M{"status": models.EffectFailed})
	if err != nil {
		return nil, err
	}
	var effects []models.SideEffect
	if err := cursor.All(ctx, &effects); err != nil {
		return nil, err
	}
	return effects, nil
}
