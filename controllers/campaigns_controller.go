package controllers

import (
	"context"
	"log"
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
func CreateCampaign(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Authenticated user ---
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		// --- Bind form fields ---
		var input struct {
			Title        string  `form:"title" binding:"required"`
			Description  string  `form:"description" binding:"required"`
			TargetAmount float64 `form:"target_amount" binding:"required"`
			Deadline     string  `form:"deadline" binding:"required"`
			Category     string  `form:"category"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		if input.TargetAmount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target_amount must be greater than 0", "kind": "ValidationError"})
			return
		}

		deadline, err := parseDeadline(input.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline format, use RFC3339 or YYYY-MM-DD", "kind": "ValidationError"})
			return
		}
		if !deadline.After(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be in the future", "kind": "ValidationError"})
			return
		}

		var categoryID primitive.ObjectID
		if input.Category != "" {
			categoryID, err = primitive.ObjectIDFromHex(input.Category)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id", "kind": "ValidationError"})
				return
			}
		}

		// --- Handle file uploads ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data", "kind": "ValidationError"})
			return
		}

		var imageURLs []string
		if form != nil {
			files := form.File["images"] // key must be "images"
			for _, fileHeader := range files {
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}

				url, err := utils.UploadToCloudinary(file, fileHeader)
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "image upload failed",
						"details": err.Error(),
						"file":    fileHeader.Filename,
					})
					return
				}

				imageURLs = append(imageURLs, url)
			}
		}

		// --- Save campaign ---
		now := time.Now()
		campaign := models.Campaign{
			ID:            primitive.NewObjectID(),
			Title:         input.Title,
			Description:   input.Description,
			Creator:       userID,
			TargetAmount:  input.TargetAmount,
			CurrentAmount: 0,
			Status:        models.CampaignActive,
			Deadline:      deadline,
			Category:      categoryID,
			Images:        imageURLs,
			Donors:        []models.Donor{},
			Comments:      []primitive.ObjectID{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		db := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("campaigns").InsertOne(ctx, campaign); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create campaign"})
			return
		}

		// back-reference on the creator
		if _, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$push": bson.M{"campaigns_created": campaign.ID}},
		); err != nil {
			log.Printf("push campaign %s onto user %s: %v", campaign.ID.Hex(), uid, err)
		}

		// feed record, best-effort
		runner := services.NewEffectRunner(db, nil)
		if err := runner.Dispatch(ctx, models.EffectActivity, bson.M{
			"user":     uid,
			"type":     models.ActivityCampaignCreate,
			"campaign": campaign.ID.Hex(),
			"details":  bson.M{"title": campaign.Title},
		}); err != nil {
			log.Printf("campaign_create activity for %s failed: %v", campaign.ID.Hex(), err)
		}

		campaign.ComputeDerived(now)
		c.JSON(http.StatusCreated, campaign)
	}
}

// ---------------- LIST ----------------
func ListCampaigns(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection("campaigns")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Build filter ---
		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		if category := c.Query("category"); category != "" {
			if oid, err := primitive.ObjectIDFromHex(category); err == nil {
				filter["category"] = oid
			}
		}
		if q := c.Query("q"); q != "" {
			filter["title"] = bson.M{"$regex": q, "$options": "i"}
		}

		// --- Fetch data ---
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch campaigns"})
			return
		}

		var campaigns []models.Campaign
		if err := cursor.All(ctx, &campaigns); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode campaigns"})
			return
		}

		if len(campaigns) == 0 {
			c.JSON(http.StatusOK, []models.Campaign{})
			return
		}

		now := time.Now()
		for i := range campaigns {
			campaigns[i].ComputeDerived(now)
		}

		// --- Pick the most recently updated campaign ---
		latest := campaigns[0]
		for _, cp := range campaigns {
			if cp.UpdatedAt.After(latest.UpdatedAt) {
				latest = cp
			}
		}

		// --- Generate ETag from latest campaign ---
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, campaigns)
	}
}

// ---------------- GET ----------------
func GetCampaign(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		db := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var campaign models.Campaign
		if err := db.Collection("campaigns").FindOne(ctx, bson.M{"_id": campaignID}).Decode(&campaign); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found", "kind": "NotFound"})
			return
		}
		campaign.ComputeDerived(time.Now())

		// enrich with creator and comments
		var creator models.User
		creatorView := gin.H{}
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": campaign.Creator}).Decode(&creator); err == nil {
			creatorView = gin.H{
				"id":            creator.ID.Hex(),
				"username":      creator.Username,
				"profile_image": creator.ProfileImage,
			}
		}

		comments := []models.Comment{}
		cursor, err := db.Collection("comments").Find(ctx, bson.M{"campaign": campaignID})
		if err == nil {
			cursor.All(ctx, &comments)
		}

		etag := utils.GenerateETag(campaign.ID, campaign.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, gin.H{
			"campaign": campaign,
			"creator":  creatorView,
			"comments": comments,
		})
	}
}

// ---------------- UPDATE ----------------
func UpdateCampaign(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("campaigns")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Campaign
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found", "kind": "NotFound"})
			return
		}

		if role != "admin" && existing.Creator.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		var input struct {
			Title        string   `form:"title"`
			Description  string   `form:"description"`
			TargetAmount float64  `form:"target_amount"`
			Deadline     string   `form:"deadline"`
			Category     string   `form:"category"`
			Images       []string `form:"images"` // existing image URLs to keep
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		// status and current_amount are owned by the donation pipeline, not
		// by owner edits
		update := bson.M{"updated_at": time.Now()}
		if input.Title != "" {
			update["title"] = input.Title
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if input.TargetAmount > 0 {
			update["target_amount"] = input.TargetAmount
		}
		if input.Category != "" {
			categoryID, err := primitive.ObjectIDFromHex(input.Category)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id", "kind": "ValidationError"})
				return
			}
			update["category"] = categoryID
		}
		if input.Deadline != "" {
			deadline, err := parseDeadline(input.Deadline)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline format, use RFC3339 or YYYY-MM-DD", "kind": "ValidationError"})
				return
			}
			update["deadline"] = deadline
		}

		// --- Handle new image uploads (multipart form) ---
		newImageURLs := []string{}
		form, _ := c.MultipartForm()
		if form != nil {
			files := form.File["new_images"] // key = "new_images"
			for _, fileHeader := range files {
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image"})
					return
				}
				url, err := utils.UploadToCloudinary(file, fileHeader)
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				newImageURLs = append(newImageURLs, url)
			}
		}

		if input.Images != nil || len(newImageURLs) > 0 {
			update["images"] = append(input.Images, newImageURLs...)
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update", "kind": "ValidationError"})
			return
		}

		var updated models.Campaign
		err = col.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": update},
			optionsFindOneAndUpdateAfter()).Decode(&updated)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update campaign"})
			return
		}
		updated.ComputeDerived(time.Now())

		c.JSON(http.StatusOK, gin.H{
			"message":  "campaign updated successfully",
			"campaign": updated,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteCampaign(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		db := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.Campaign
		if err := db.Collection("campaigns").FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found", "kind": "NotFound"})
			return
		}

		if role != "admin" && existing.Creator.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		res, err := db.Collection("campaigns").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete campaign"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found", "kind": "NotFound"})
			return
		}

		// cascade: donations, comments and campaign-scoped notifications go
		// with the campaign
		if _, err := db.Collection("donations").DeleteMany(ctx, bson.M{"campaign": oid}); err != nil {
			log.Printf("cascade delete donations for %s: %v", oid.Hex(), err)
		}
		if _, err := db.Collection("comments").DeleteMany(ctx, bson.M{"campaign": oid}); err != nil {
			log.Printf("cascade delete comments for %s: %v", oid.Hex(), err)
		}
		if _, err := db.Collection("notifications").DeleteMany(ctx, bson.M{"campaign": oid}); err != nil {
			log.Printf("cascade delete notifications for %s: %v", oid.Hex(), err)
		}

		// back-reference on the creator
		if _, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": existing.Creator},
			bson.M{"$pull": bson.M{"campaigns_created": oid}},
		); err != nil {
			log.Printf("pull campaign %s from user %s: %v", oid.Hex(), existing.Creator.Hex(), err)
		}

		for _, img := range existing.Images {
			if err := utils.DeleteFromCloudinary(img); err != nil {
				log.Printf("delete image %s: %v", img, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "campaign deleted successfully",
			"id":      oid.Hex(),
		})
	}
}

// parseDeadline accepts RFC3339 plus a few date-only fallbacks.
func parseDeadline(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return parsed, nil
	}
	layouts := []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if t, e := time.Parse(layout, raw); e == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
