package handler

import (
	"net/http"

	"github.com/Baaaki/trail-catalog/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the router serves.
type Handlers struct {
	Users     *UserHandler
	Trails    *TrailHandler
	Feedbacks *FeedbackHandler
	Reports   *ReportHandler
}

// RegisterRoutes mounts the API on router. Every path parameter naming an
// entity is :id so that sibling routes share one wildcard.
func RegisterRoutes(router *gin.Engine, h Handlers, jwtSecret string) {
	auth := middleware.AuthMiddleware(jwtSecret)
	admin := middleware.AdminMiddleware()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	trails := router.Group("/trails")
	{
		trails.GET("", h.Trails.List)
		trails.GET("/near", h.Trails.Near)
		trails.GET("/:id", h.Trails.Get)
		trails.GET("/:id/gpx", h.Trails.StreamTrack)
		trails.GET("/:id/download/gpx", h.Trails.DownloadTrack)

		trails.POST("", auth, admin, h.Trails.Create)
		trails.PUT("/:id", auth, admin, h.Trails.Update)
		trails.PUT("/:id/gpx", auth, admin, h.Trails.ReplaceTrack)
		trails.DELETE("/:id", auth, admin, h.Trails.Delete)
	}

	// filePath returned on create resolves here
	router.GET("/uploads/:id/track.gpx", h.Trails.StreamTrack)

	users := router.Group("/users")
	{
		users.POST("", h.Users.Authenticate)
		users.GET("/all", auth, admin, h.Users.List)
		users.GET("/favourites/:id", auth, h.Users.Favourites)
		users.GET("/:id", auth, h.Users.Get)
		users.PUT("/:id", auth, h.Users.Update)
		users.DELETE("/:id", auth, h.Users.Delete)
		users.POST("/:id/favourites/:trailId", auth, h.Users.AddFavourite)
		users.DELETE("/:id/favourites/:trailId", auth, h.Users.RemoveFavourite)
	}

	feedbacks := router.Group("/feedbacks", auth)
	{
		feedbacks.GET("/all", admin, h.Feedbacks.List)
		feedbacks.GET("/all/trail/:id", h.Feedbacks.ListByTrail)
		feedbacks.GET("/all/user/:id", h.Feedbacks.ListByUser)
		feedbacks.POST("/:id", h.Feedbacks.Create)
		feedbacks.GET("/:id", h.Feedbacks.Get)
		feedbacks.PUT("/:id", h.Feedbacks.Update)
		feedbacks.DELETE("/:id", h.Feedbacks.Delete)
	}

	reports := router.Group("/reports", auth)
	{
		reports.GET("/all", admin, h.Reports.List)
		reports.GET("/all/trail/:id", h.Reports.ListByTrail)
		reports.GET("/all/user/:id", h.Reports.ListByUser)
		reports.POST("/:id", h.Reports.Create)
		reports.GET("/:id", h.Reports.Get)
		reports.PUT("/:id", h.Reports.Update)
		reports.DELETE("/:id", h.Reports.Delete)
	}
}
