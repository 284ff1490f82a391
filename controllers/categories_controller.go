package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/phillip/fundraiser-go/config"
	models "github.com/phillip/fundraiser-go/models"
)

// ---------------- LIST ----------------
func ListCategories(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection("categories")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := col.Find(ctx, bson.M{"is_active": true}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch categories"})
			return
		}

		var categories []models.Category
		if err := cursor.All(ctx, &categories); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode categories"})
			return
		}

		if len(categories) == 0 {
			c.JSON(http.StatusOK, []models.Category{})
			return
		}

		c.JSON(http.StatusOK, categories)
	}
}

// ---------------- CREATE ----------------
func CreateCategory(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "kind": "Forbidden"})
			return
		}

		var input struct {
			Name        string `json:"name" binding:"required"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		now := time.Now()
		category := models.Category{
			ID:          primitive.NewObjectID(),
			Name:        input.Name,
			Slug:        models.Slugify(input.Name),
			Description: input.Description,
			Icon:        input.Icon,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("categories")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, category); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "category already exists", "kind": "ValidationError"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}
