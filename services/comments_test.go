package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/fundraiser-go/models"
)

func TestCommentNotifiesCampaignCreator(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	commenter := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	result, err := env.commentSvc.Create(context.Background(), CommentInput{
		UserID:   commenter,
		Campaign: campaignID,
		Content:  "  Great cause!  ",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Equal(t, "Great cause!", result.Comment.Content)

	// persisted and linked onto the campaign
	require.Len(t, env.comments.comments, 1)
	require.Contains(t, env.campaigns.campaigns[campaignID].Comments, result.Comment.ID)

	require.Len(t, env.activities.byType(models.ActivityComment), 1)
	require.Len(t, env.notifications.notifications, 1)
	require.Equal(t, creator, env.notifications.notifications[0].UserID)
	require.Equal(t, models.NotificationComment, env.notifications.notifications[0].Type)
}

func TestSelfCommentSuppressesNotification(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	result, err := env.commentSvc.Create(context.Background(), CommentInput{
		UserID:   creator,
		Campaign: campaignID,
		Content:  "Thanks everyone for the support",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	// activity still recorded, no notification
	require.Len(t, env.activities.byType(models.ActivityComment), 1)
	require.Empty(t, env.notifications.notifications)
}

func TestCommentActivityTruncatesPreview(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	long := strings.Repeat("x", 250)
	_, err := env.commentSvc.Create(context.Background(), CommentInput{
		UserID:   creator,
		Campaign: campaignID,
		Content:  long,
	})
	require.NoError(t, err)

	activities := env.activities.byType(models.ActivityComment)
	require.Len(t, activities, 1)
	preview, _ := activities[0].Details["content"].(string)
	require.Len(t, preview, 100)
}

func TestCommentValidation(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser(0)
	campaignID := env.addCampaign(creator, 100, 0, models.CampaignActive, env.now.Add(24*time.Hour))

	_, err := env.commentSvc.Create(context.Background(), CommentInput{
		UserID:   creator,
		Campaign: campaignID,
		Content:  "   ",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.commentSvc.Create(context.Background(), CommentInput{
		UserID:   creator,
		Campaign: primitive.NewObjectID(),
		Content:  "hello",
	})
	require.ErrorIs(t, err, ErrNotFound)
}
