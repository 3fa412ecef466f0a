package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/auth"
	"portify/internal/config"
	"portify/internal/showcase"
)

// RegisterRoutes wires every API route under /v1.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	storageClient ObjectStorage,
	showcaseService *showcase.Service,
	cfg *config.Config,
) {
	authHandler := NewAuthHandler(db, authService, redisClient, logger, cfg.Auth.CookieDomain)
	profileHandler := NewProfileHandler(db)
	projectHandler := NewProjectHandler(db)
	analyticsHandler := NewAnalyticsHandler(db)
	eventsHandler := NewEventsHandler(db)
	customizeHandler := NewCustomizeHandler(db)
	showcaseHandler := NewShowcaseHandler(db, showcaseService)
	assetHandler := NewAssetHandler(storageClient, logger, cfg.Uploads.ClamdAddr, cfg.Uploads.MaxBytes, redisClient, cfg.Uploads.MaxUploadsPerDay)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}

		// Public surface: the rendered page, its showcase sections and the
		// event recorder all run in the visitor's context, unauthenticated.
		v1.GET("/username/check", profileHandler.CheckUsername)
		v1.GET("/users/:username/page", profileHandler.GetPublicPage)
		v1.GET("/users/:username/showcase/:platform", showcaseHandler.Get)
		v1.POST("/events/visit", eventsHandler.RecordVisit)
		v1.POST("/events/click", eventsHandler.RecordClick)

		authed := v1.Group("")
		authed.Use(authMiddleware)
		{
			authed.GET("/me", profileHandler.GetMe)
			authed.PATCH("/profile", profileHandler.UpdateProfile)

			authed.GET("/projects", projectHandler.ListProjects)
			authed.POST("/projects", projectHandler.UpsertProject)
			authed.DELETE("/projects/:id", projectHandler.DeleteProject)
			authed.POST("/projects/order", projectHandler.ReorderProjects)

			authed.GET("/analytics", analyticsHandler.GetAnalytics)

			authed.GET("/template", customizeHandler.GetTemplate)
			authed.POST("/template", customizeHandler.SetTemplate)
			authed.GET("/theme", customizeHandler.GetTheme)
			authed.PATCH("/theme", customizeHandler.SetTheme)
			authed.GET("/font", customizeHandler.GetFont)
			authed.POST("/font", customizeHandler.SetFont)
			authed.GET("/settings/:platform", customizeHandler.GetShowFlag)
			authed.PATCH("/settings/:platform", customizeHandler.SetShowFlag)

			authed.POST("/assets/upload", assetHandler.UploadAsset)
		}
	}
}
