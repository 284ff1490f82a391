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
func CreateComment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		var input struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc := services.NewCommentService(cfg.MongoClient.Database(cfg.DBName), utils.SendEmail)
		result, err := svc.Create(ctx, services.CommentInput{
			UserID:   userID,
			Campaign: campaignID,
			Content:  input.Content,
		})
		if err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

// ---------------- LIST ----------------
func ListCampaignComments(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id", "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("comments")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := col.Find(ctx, bson.M{"campaign": campaignID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch comments"})
			return
		}

		var comments []models.Comment
		if err := cursor.All(ctx, &comments); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode comments"})
			return
		}

		c.JSON(http.StatusOK, comments)
	}
}

// ---------------- REPLY ----------------
func ReplyToComment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id", "kind": "ValidationError"})
			return
		}

		var input struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("comments")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		reply := models.Reply{
			UserID:    userID,
			Content:   input.Content,
			CreatedAt: time.Now(),
		}

		res, err := col.UpdateOne(ctx,
			bson.M{"_id": commentID},
			bson.M{"$push": bson.M{"replies": reply}, "$set": bson.M{"updated_at": time.Now()}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add reply"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found", "kind": "NotFound"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "reply added", "reply": reply})
	}
}

// ---------------- LIKE ----------------
func LikeComment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id", "kind": "ValidationError"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("comments")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var comment models.Comment
		if err := col.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found", "kind": "NotFound"})
			return
		}

		// toggle
		liked := false
		for _, id := range comment.Likes {
			if id == userID {
				liked = true
				break
			}
		}

		update := bson.M{"$addToSet": bson.M{"likes": userID}}
		if liked {
			update = bson.M{"$pull": bson.M{"likes": userID}}
		}

		if _, err := col.UpdateOne(ctx, bson.M{"_id": commentID}, update); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update likes"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"liked": !liked})
	}
}
