package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/fundraiser-go/models"
)

func TestDonationAppliesAmountAndPoints(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(0)
	campaignID := env.addCampaign(creator, 500, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	result, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   25,
		Message:  "good luck",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.False(t, result.Completed)

	require.Equal(t, 25.0, result.Campaign.CurrentAmount)
	require.Equal(t, models.CampaignActive, result.Campaign.Status)
	require.NotEmpty(t, result.Donation.PaymentRef)

	donorDoc := env.users.users[donor]
	require.Equal(t, models.PointsPerDonation, donorDoc.Points)
	require.Len(t, donorDoc.DonationsMade, 1)

	require.Len(t, env.activities.byType(models.ActivityDonation), 1)
	require.Len(t, env.notifications.notifications, 1)
	require.Equal(t, creator, env.notifications.notifications[0].UserID)
}

func TestDonationCompletesCampaignAtTarget(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 90, models.CampaignActive, env.now.Add(24*time.Hour))

	result, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   10,
	})
	require.NoError(t, err)
	require.True(t, result.Completed)
	require.Equal(t, 100.0, result.Campaign.CurrentAmount)
	require.Equal(t, models.CampaignCompleted, result.Campaign.Status)
	require.Equal(t, models.CampaignCompleted, env.campaigns.campaigns[campaignID].Status)
	require.Equal(t, models.PointsPerDonation, env.users.users[donor].Points)

	// donation + completion notifications for the creator
	require.Len(t, env.notifications.notifications, 2)
}

func TestDonationRejectedOnTerminalCampaign(t *testing.T) {
	for _, status := range []string{models.CampaignCompleted, models.CampaignCancelled} {
		t.Run(status, func(t *testing.T) {
			env := newTestEnv()
			creator := env.addUser(0)
			donor := env.addUser(0)
			campaignID := env.addCampaign(creator, 100, 100, status, env.now.Add(24*time.Hour))

			_, err := env.donationSvc.Create(context.Background(), DonationInput{
				Donor:    donor,
				Campaign: campaignID,
				Amount:   10,
			})
			require.ErrorIs(t, err, ErrCampaignNotActive)

			// nothing mutated
			require.Equal(t, 100.0, env.campaigns.campaigns[campaignID].CurrentAmount)
			require.Zero(t, env.users.users[donor].Points)
			require.Empty(t, env.donations.donations)
			require.Empty(t, env.notifications.notifications)
		})
	}
}

func TestDonationRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	for _, amount := range []float64{0, -5} {
		_, err := env.donationSvc.Create(context.Background(), DonationInput{
			Donor:    donor,
			Campaign: campaignID,
			Amount:   amount,
		})
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestDonationToUnknownCampaign(t *testing.T) {
	env := newTestEnv()
	donor := env.addUser(0)

	_, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: primitive.NewObjectID(),
		Amount:   10,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExpiredCampaignCancelledOnDonation(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 10, models.CampaignActive, env.now.Add(-time.Hour))

	_, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   10,
	})
	require.ErrorIs(t, err, ErrCampaignNotActive)
	require.Equal(t, models.CampaignCancelled, env.campaigns.campaigns[campaignID].Status)
	require.Equal(t, 10.0, env.campaigns.campaigns[campaignID].CurrentAmount)
}

func TestLevelUpCrossingThreshold(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(950)
	campaignID := env.addCampaign(creator, 1000, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	_, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   10,
	})
	require.NoError(t, err)

	donorDoc := env.users.users[donor]
	require.Equal(t, 1000, donorDoc.Points)
	require.Equal(t, models.LevelSilver, donorDoc.Level)

	levelUps := env.activities.byType(models.ActivityLevelUp)
	require.Len(t, levelUps, 1)
	require.Equal(t, models.LevelBronze, levelUps[0].Details["from"])
	require.Equal(t, models.LevelSilver, levelUps[0].Details["to"])
}

func TestNoLevelUpWithinSameTier(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(100)
	campaignID := env.addCampaign(creator, 1000, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	_, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   10,
	})
	require.NoError(t, err)
	require.Equal(t, models.LevelBronze, env.users.users[donor].Level)
	require.Empty(t, env.activities.byType(models.ActivityLevelUp))
}

func TestSelfDonationSkipsNotification(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	result, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    creator,
		Campaign: campaignID,
		Amount:   10,
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Empty(t, env.notifications.notifications)
	require.Len(t, env.activities.byType(models.ActivityDonation), 1)
}

func TestNotificationFailureDoesNotRollBackPrimaryWrites(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(0)
	campaignID := env.addCampaign(creator, 500, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	env.notifications.insertErr = errors.New("notification store down")

	result, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   40,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)

	// primary mutations survive
	require.Equal(t, 40.0, env.campaigns.campaigns[campaignID].CurrentAmount)
	require.Equal(t, models.PointsPerDonation, env.users.users[donor].Points)
	require.Len(t, env.donations.donations, 1)

	// failed step stays queued
	failed, listErr := env.outbox.ListFailed(context.Background())
	require.NoError(t, listErr)
	require.Len(t, failed, 1)
	require.Equal(t, models.EffectNotification, failed[0].Kind)

	// retry after the store recovers
	env.notifications.insertErr = nil
	succeeded, stillFailed, retryErr := env.donationSvc.Effects.RetryFailed(context.Background())
	require.NoError(t, retryErr)
	require.Equal(t, 1, succeeded)
	require.Zero(t, stillFailed)
	require.Len(t, env.notifications.notifications, 1)
}

func TestPointsCreditFailureReportedNotRolledBack(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donor := env.addUser(0)
	campaignID := env.addCampaign(creator, 500, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	env.users.creditErr = errors.New("user store down")

	result, err := env.donationSvc.Create(context.Background(), DonationInput{
		Donor:    donor,
		Campaign: campaignID,
		Amount:   40,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)

	// amount applied even though the credit failed
	require.Equal(t, 40.0, env.campaigns.campaigns[campaignID].CurrentAmount)
	require.Zero(t, env.users.users[donor].Points)

	env.users.creditErr = nil
	succeeded, _, retryErr := env.donationSvc.Effects.RetryFailed(context.Background())
	require.NoError(t, retryErr)
	require.Equal(t, 1, succeeded)
	require.Equal(t, models.PointsPerDonation, env.users.users[donor].Points)
}

func TestConcurrentDonationsLoseNoIncrement(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	donorA := env.addUser(0)
	donorB := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	var wg sync.WaitGroup
	results := make([]*DonationResult, 2)
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = env.donationSvc.Create(context.Background(), DonationInput{
			Donor: donorA, Campaign: campaignID, Amount: 60,
		})
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = env.donationSvc.Create(context.Background(), DonationInput{
			Donor: donorB, Campaign: campaignID, Amount: 60,
		})
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	final := env.campaigns.campaigns[campaignID]
	require.Equal(t, 120.0, final.CurrentAmount)
	require.Equal(t, models.CampaignCompleted, final.Status)

	completions := 0
	for _, r := range results {
		if r.Completed {
			completions++
		}
	}
	require.Equal(t, 1, completions)
}
