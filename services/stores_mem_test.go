package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/fundraiser-go/models"
)

// In-memory fakes. The mutex on the campaign and user stores models the
// server-side atomicity of the Mongo $inc operations: a naive
// read-modify-write implementation of ApplyDonation would fail the
// concurrency test.

type memCampaignStore struct {
	mu        sync.Mutex
	campaigns map[primitive.ObjectID]*models.Campaign
}

func newMemCampaignStore() *memCampaignStore {
	return &memCampaignStore{campaigns: map[primitive.ObjectID]*models.Campaign{}}
}

func (s *memCampaignStore) Get(_ context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("%w: campaign", ErrNotFound)
	}
	copied := *campaign
	return &copied, nil
}

func (s *memCampaignStore) ApplyDonation(_ context.Context, id primitive.ObjectID, donor models.Donor) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("%w: campaign", ErrNotFound)
	}
	if campaign.Status != models.CampaignActive {
		return nil, ErrCampaignNotActive
	}
	campaign.CurrentAmount += donor.Amount
	campaign.Donors = append(campaign.Donors, donor)
	copied := *campaign
	return &copied, nil
}

func (s *memCampaignStore) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return false, fmt.Errorf("%w: campaign", ErrNotFound)
	}
	if campaign.Status != from {
		return false, nil
	}
	campaign.Status = to
	return true, nil
}

func (s *memCampaignStore) PushComment(_ context.Context, campaignID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[campaignID]
	if !ok {
		return fmt.Errorf("%w: campaign", ErrNotFound)
	}
	campaign.Comments = append(campaign.Comments, commentID)
	return nil
}

type memUserStore struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*models.User
	creditErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (s *memUserStore) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) CreditDonation(_ context.Context, id primitive.ObjectID, points int, donationID primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creditErr != nil {
		return nil, s.creditErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	user.Points += points
	user.DonationsMade = append(user.DonationsMade, donationID)
	copied := *user
	return &copied, nil
}

func (s *memUserStore) SetLevel(_ context.Context, id primitive.ObjectID, level string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	user.Level = level
	return nil
}

type memDonationStore struct {
	mu        sync.Mutex
	donations map[primitive.ObjectID]*models.Donation
	insertErr error
}

func newMemDonationStore() *memDonationStore {
	return &memDonationStore{donations: map[primitive.ObjectID]*models.Donation{}}
}

func (s *memDonationStore) Insert(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	copied := *d
	s.donations[d.ID] = &copied
	return nil
}

func (s *memDonationStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.donations, id)
	return nil
}

type memCommentStore struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{comments: map[primitive.ObjectID]*models.Comment{}}
}

func (s *memCommentStore) Insert(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.comments[c.ID] = &copied
	return nil
}

type memActivityStore struct {
	mu         sync.Mutex
	activities []models.Activity
	insertErr  error
}

func (s *memActivityStore) Insert(_ context.Context, a *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.activities = append(s.activities, *a)
	return nil
}

func (s *memActivityStore) byType(activityType string) []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Activity
	for _, a := range s.activities {
		if a.Type == activityType {
			matched = append(matched, a)
		}
	}
	return matched
}

type memNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
	insertErr     error
}

func (s *memNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

type memOutboxStore struct {
	mu      sync.Mutex
	effects map[primitive.ObjectID]*models.SideEffect
}

func newMemOutboxStore() *memOutboxStore {
	return &memOutboxStore{effects: map[primitive.ObjectID]*models.SideEffect{}}
}

func (s *memOutboxStore) Insert(_ context.Context, e *models.SideEffect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *e
	s.effects[e.ID] = &copied
	return nil
}

func (s *memOutboxStore) MarkDone(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if effect, ok := s.effects[id]; ok {
		effect.Status = models.EffectDone
		effect.Attempts++
	}
	return nil
}

func (s *memOutboxStore) MarkFailed(_ context.Context, id primitive.ObjectID, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if effect, ok := s.effects[id]; ok {
		effect.Status = models.EffectFailed
		effect.LastError = cause.Error()
		effect.Attempts++
	}
	return nil
}

func (s *memOutboxStore) ListFailed(_ context.Context) ([]models.SideEffect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var failed []models.SideEffect
	for _, effect := range s.effects {
		if effect.Status == models.EffectFailed {
			failed = append(failed, *effect)
		}
	}
	return failed, nil
}

// testEnv bundles a dispatcher wired to fakes.
type testEnv struct {
	campaigns     *memCampaignStore
	users         *memUserStore
	donations     *memDonationStore
	comments      *memCommentStore
	activities    *memActivityStore
	notifications *memNotificationStore
	outbox        *memOutboxStore
	now           time.Time

	donationSvc *DonationService
	commentSvc  *CommentService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		campaigns:     newMemCampaignStore(),
		users:         newMemUserStore(),
		donations:     newMemDonationStore(),
		comments:      newMemCommentStore(),
		activities:    &memActivityStore{},
		notifications: &memNotificationStore{},
		outbox:        newMemOutboxStore(),
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	runner := &EffectRunner{
		Users:         env.users,
		Activities:    env.activities,
		Notifications: env.notifications,
		Outbox:        env.outbox,
		Now:           func() time.Time { return env.now },
	}
	env.donationSvc = &DonationService{
		Campaigns: env.campaigns,
		Donations: env.donations,
		Effects:   runner,
	}
	env.commentSvc = &CommentService{
		Campaigns: env.campaigns,
		Comments:  env.comments,
		Effects:   runner,
	}
	return env
}

func (env *testEnv) addUser(points int) primitive.ObjectID {
	id := primitive.NewObjectID()
	env.users.users[id] = &models.User{
		ID:     id,
		Email:  id.Hex() + "@example.com",
		Level:  models.LevelForPoints(points),
		Points: points,
	}
	return id
}

func (env *testEnv) addCampaign(creator primitive.ObjectID, target, current float64, status string, deadline time.Time) primitive.ObjectID {
	id := primitive.NewObjectID()
	env.campaigns.campaigns[id] = &models.Campaign{
		ID:            id,
		Title:         "Clean water for Kibera",
		Creator:       creator,
		TargetAmount:  target,
		CurrentAmount: current,
		Status:        status,
		Deadline:      deadline,
	}
	return id
}
