package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	config "github.com/phillip/fundraiser-go/config"
	models "github.com/phillip/fundraiser-go/models"
	services "github.com/phillip/fundraiser-go/services"
	utils "github.com/phillip/fundraiser-go/utils"
)

// ---------------- STATS ----------------
func AdminStats(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		db := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		userCount, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count users"})
			return
		}
		campaignCount, err := db.Collection("campaigns").CountDocuments(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count campaigns"})
			return
		}
		activeCount, err := db.Collection("campaigns").CountDocuments(ctx, bson.M{"status": models.CampaignActive})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count active campaigns"})
			return
		}
		donationCount, err := db.Collection("donations").CountDocuments(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count donations"})
			return
		}

		// total raised across all donations
		totalRaised := 0.0
		cursor, err := db.Collection("donations").Aggregate(ctx, mongoAggPipeline())
		if err == nil {
			var results []struct {
				Total float64 `bson:"total"`
			}
			if err := cursor.All(ctx, &results); err == nil && len(results) > 0 {
				totalRaised = results[0].Total
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"users":            userCount,
			"campaigns":        campaignCount,
			"active_campaigns": activeCount,
			"donations":        donationCount,
			"total_raised":     totalRaised,
		})
	}
}

func mongoAggPipeline() []bson.M {
	return []bson.M{
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}},
	}
}

// ---------------- SIDE EFFECT RETRY ----------------
func RetrySideEffects(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		runner := services.NewEffectRunner(cfg.MongoClient.Database(cfg.DBName), utils.SendEmail)
		succeeded, failed, err := runner.RetryFailed(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list failed side effects"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"retried":   succeeded + failed,
			"succeeded": succeeded,
			"failed":    failed,
		})
	}
}
