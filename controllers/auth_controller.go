package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	config "github.com/phillip/fundraiser-go/config"
	middleware "github.com/phillip/fundraiser-go/middleware"
	models "github.com/phillip/fundraiser-go/models"
	services "github.com/phillip/fundraiser-go/services"
)

const bcryptCost = 12

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Username  string `json:"username" binding:"required"`
			Email     string `json:"email" binding:"required,email"`
			Password  string `json:"password" binding:"required,min=6"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		email := strings.ToLower(strings.TrimSpace(input.Email))
		username := strings.TrimSpace(input.Username)

		// check for existing username/email
		count, err := col.CountDocuments(ctx, bson.M{
			"$or": []bson.M{{"email": email}, {"username": username}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check existing users"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrDuplicateUser.Error(), "kind": "DuplicateUser"})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		now := time.Now()
		user := models.User{
			ID:               primitive.NewObjectID(),
			Username:         username,
			Email:            email,
			Password:         string(hashed),
			FirstName:        input.FirstName,
			LastName:         input.LastName,
			Role:             "user",
			Level:            models.LevelBronze,
			Points:           0,
			CampaignsCreated: []primitive.ObjectID{},
			DonationsMade:    []primitive.ObjectID{},
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if _, err := col.InsertOne(ctx, user); err != nil {
			// unique index on username/email may still catch a race
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrDuplicateUser.Error(), "kind": "DuplicateUser"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		token, err := middleware.GenerateToken(cfg, user.ID.Hex(), user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"email":    user.Email,
			"level":    user.Level,
			"token":    token,
		})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		err := col.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(input.Email))}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := middleware.GenerateToken(cfg, user.ID.Hex(), user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"email":    user.Email,
			"level":    user.Level,
			"points":   user.Points,
			"token":    token,
		})
	}
}

// ---------------- PROFILE ----------------
func GetProfile(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		db := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found", "kind": "NotFound"})
			return
		}

		// enrich with created campaigns and donations made
		campaigns := []models.Campaign{}
		cursor, err := db.Collection("campaigns").Find(ctx, bson.M{"creator": userID})
		if err == nil {
			cursor.All(ctx, &campaigns)
		}
		now := time.Now()
		for i := range campaigns {
			campaigns[i].ComputeDerived(now)
		}

		donations := []models.Donation{}
		cursor, err = db.Collection("donations").Find(ctx, bson.M{"donor": userID})
		if err == nil {
			cursor.All(ctx, &donations)
		}

		c.JSON(http.StatusOK, gin.H{
			"user":      user,
			"campaigns": campaigns,
			"donations": donations,
		})
	}
}

func UpdateProfile(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Username     string `json:"username"`
			FirstName    string `json:"first_name"`
			LastName     string `json:"last_name"`
			ProfileImage string `json:"profile_image"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Username != "" {
			update["username"] = strings.TrimSpace(input.Username)
		}
		if input.FirstName != "" {
			update["first_name"] = input.FirstName
		}
		if input.LastName != "" {
			update["last_name"] = input.LastName
		}
		if input.ProfileImage != "" {
			update["profile_image"] = input.ProfileImage
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update", "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var updated models.User
		err = col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": update},
			optionsFindOneAndUpdateAfter()).Decode(&updated)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrDuplicateUser.Error(), "kind": "DuplicateUser"})
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found", "kind": "NotFound"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}
