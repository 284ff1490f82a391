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

var reportableContent = map[string]bool{
	"user":     true,
	"campaign": true,
	"comment":  true,
}

// ---------------- CREATE ----------------
func CreateReport(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		reporterID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			ContentType string `json:"content_type" binding:"required"`
			ContentID   string `json:"content_id" binding:"required"`
			Reason      string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		if !reportableContent[input.ContentType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content_type must be user, campaign or comment", "kind": "ValidationError"})
			return
		}
		contentID, err := primitive.ObjectIDFromHex(input.ContentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id", "kind": "ValidationError"})
			return
		}

		now := time.Now()
		report := models.Report{
			ID:          primitive.NewObjectID(),
			ReporterID:  reporterID,
			ContentType: input.ContentType,
			ContentID:   contentID,
			Reason:      input.Reason,
			Status:      models.ReportPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("reports")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, report); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create report"})
			return
		}

		c.JSON(http.StatusCreated, report)
	}
}

// ---------------- LIST (admin) ----------------
func ListReports(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("reports")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch reports"})
			return
		}

		var reports []models.Report
		if err := cursor.All(ctx, &reports); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode reports"})
			return
		}

		if len(reports) == 0 {
			c.JSON(http.StatusOK, []models.Report{})
			return
		}

		c.JSON(http.StatusOK, reports)
	}
}

// ---------------- UPDATE (admin) ----------------
func UpdateReport(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id", "kind": "ValidationError"})
			return
		}

		var input struct {
			Status     string `json:"status"`
			AdminNotes string `json:"admin_notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Status != "" {
			if input.Status != models.ReportPending && input.Status != models.ReportReviewed && input.Status != models.ReportResolved {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report status", "kind": "ValidationError"})
				return
			}
			update["status"] = input.Status
		}
		if input.AdminNotes != "" {
			update["admin_notes"] = input.AdminNotes
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update", "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("reports")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update report"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found", "kind": "NotFound"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "report updated", "id": oid.Hex()})
	}
}
