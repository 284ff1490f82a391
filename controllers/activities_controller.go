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
)

// ---------------- LIST (own feed) ----------------
func ListActivities(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("activities")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{"user": userID}
		if activityType := c.Query("type"); activityType != "" {
			filter["type"] = activityType
		}

		opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(100)
		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch activities"})
			return
		}

		var activities []models.Activity
		if err := cursor.All(ctx, &activities); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode activities"})
			return
		}

		if len(activities) == 0 {
			c.JSON(http.StatusOK, []models.Activity{})
			return
		}

		c.JSON(http.StatusOK, activities)
	}
}
