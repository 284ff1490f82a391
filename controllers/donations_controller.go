package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/phillip/fundraiser-go/config"
	models "github.com/phillip/fundraiser-go/models"
	services "github.com/phillip/fundraiser-go/services"
	utils "github.com/phillip/fundraiser-go/utils"
)

// ---------------- CREATE ----------------
func CreateDonation(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		donorID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Campaign  string  `json:"campaign" binding:"required"`
			Amount    float64 `json:"amount" binding:"required"`
			Message   string  `json:"message"`
			Anonymous bool    `json:"anonymous"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		campaignID, err := primitive.ObjectIDFromHex(input.Campaign)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc := services.NewDonationService(cfg.MongoClient.Database(cfg.DBName), utils.SendEmail)
		result, err := svc.Create(ctx, services.DonationInput{
			Donor:     donorID,
			Campaign:  campaignID,
			Amount:    input.Amount,
			Message:   input.Message,
			Anonymous: input.Anonymous,
		})
		if err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

// ---------------- LIST (own) ----------------
func ListMyDonations(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		donorID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("donations")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := col.Find(ctx, bson.M{"donor": donorID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch donations"})
			return
		}

		var donations []models.Donation
		if err := cursor.All(ctx, &donations); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode donations"})
			return
		}

		if len(donations) == 0 {
			c.JSON(http.StatusOK, []models.Donation{})
			return
		}

		// --- Pick the most recent donation for caching headers ---
		latest := donations[0]
		for _, d := range donations {
			if d.CreatedAt.After(latest.CreatedAt) {
				latest = d
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.CreatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.CreatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, donations)
	}
}

// ---------------- LIST (by campaign, public) ----------------
func ListCampaignDonations(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		db := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// anonymous donations stay off the public list
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := db.Collection("donations").Find(ctx,
			bson.M{"campaign": campaignID, "anonymous": false}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch donations"})
			return
		}

		var donations []models.Donation
		if err := cursor.All(ctx, &donations); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode donations"})
			return
		}

		c.JSON(http.StatusOK, donations)
	}
}
