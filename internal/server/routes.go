// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/config"
	"github.com/artrogue/artrogue/internal/handler"
	"github.com/artrogue/artrogue/internal/middleware"
	"github.com/artrogue/artrogue/internal/service"
	"github.com/artrogue/artrogue/internal/session"
	"github.com/artrogue/artrogue/internal/storage"
)

// Deps bundles everything the routes need. Dependencies are passed
// explicitly — no DI container, no magic.
type Deps struct {
	ArtService   *service.ArtService
	ChatService  *service.ChatService
	Sessions     *session.Store
	SearchRepo   storage.SearchRepository
	ChatCallRepo storage.ChatCallRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	searchHandler := handler.NewSearchHandler(deps.ArtService, logger)
	sessionHandler := handler.NewSessionHandler(deps.ChatService, deps.ArtService, logger)
	chatHandler := handler.NewChatHandler(deps.ChatService, logger)
	adminHandler := handler.NewAdminHandler(deps.SearchRepo, deps.ChatCallRepo, deps.Sessions, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.GET("/search", searchHandler.Search)
		authed.POST("/sessions", sessionHandler.Create)
		authed.GET("/sessions/:id", sessionHandler.Get)
		authed.POST("/sessions/:id/select", sessionHandler.Select)
		authed.POST("/sessions/:id/chat", chatHandler.Chat)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/searches", adminHandler.RecentSearches)
	}
}
