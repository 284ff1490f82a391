package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/fundraiser-go/config"
	controllers "github.com/phillip/fundraiser-go/controllers"
	middleware "github.com/phillip/fundraiser-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))

	r.GET("/campaigns", controllers.ListCampaigns(cfg))
	r.GET("/campaigns/:id", controllers.GetCampaign(cfg))
	r.GET("/campaigns/:id/donations", controllers.ListCampaignDonations(cfg))
	r.GET("/campaigns/:id/comments", controllers.ListCampaignComments(cfg))
	r.GET("/categories", controllers.ListCategories(cfg))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	profile := r.Group("/auth/profile")
	profile.Use(auth)
	{
		profile.GET("", controllers.GetProfile(cfg))
		profile.PUT("", controllers.UpdateProfile(cfg))
	}

	campaigns := r.Group("/campaigns")
	campaigns.Use(auth)
	{
		campaigns.POST("", controllers.CreateCampaign(cfg))
		campaigns.PUT("/:id", controllers.UpdateCampaign(cfg))
		campaigns.DELETE("/:id", controllers.DeleteCampaign(cfg))
		campaigns.POST("/:id/comments", controllers.CreateComment(cfg))
	}

	donations := r.Group("/donations")
	donations.Use(auth)
	{
		donations.POST("", controllers.CreateDonation(cfg))
		donations.GET("/me", controllers.ListMyDonations(cfg))
	}

	comments := r.Group("/comments")
	comments.Use(auth)
	{
		comments.POST("/:id/replies", controllers.ReplyToComment(cfg))
		comments.POST("/:id/like", controllers.LikeComment(cfg))
	}

	notifs := r.Group("/notifications")
	notifs.Use(auth)
	{
		notifs.GET("", controllers.ListNotifications(cfg))
		notifs.PATCH("/:id/read", controllers.MarkNotificationRead(cfg))
	}

	activities := r.Group("/activities")
	activities.Use(auth)
	{
		activities.GET("", controllers.ListActivities(cfg))
	}

	reports := r.Group("/reports")
	reports.Use(auth)
	{
		reports.POST("", controllers.CreateReport(cfg))
	}

	categories := r.Group("/categories")
	categories.Use(auth)
	{
		categories.POST("", controllers.CreateCategory(cfg))
	}

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("", controllers.ListUsers(cfg))
		users.GET("/:id", controllers.GetUser(cfg))
		users.PATCH("/:id", controllers.UpdateUser(cfg))
		users.DELETE("/:id", controllers.DeleteUser(cfg))
	}

	admin := r.Group("/admin")
	admin.Use(auth)
	{
		admin.GET("/stats", controllers.AdminStats(cfg))
		admin.GET("/reports", controllers.ListReports(cfg))
		admin.PATCH("/reports/:id", controllers.UpdateReport(cfg))
		admin.POST("/side-effects/retry", controllers.RetrySideEffects(cfg))
	}
}
