package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/access"
	googleauth "docshare-backend/internal/auth"
	"docshare-backend/internal/comments"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/services/health"
	"docshare-backend/internal/shared/config"
	"docshare-backend/internal/shared/metrics"
	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
	"docshare-backend/internal/uploads"
	"docshare-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	DocumentHandler *documents.Handler
	AccessHandler   *access.Handler
	CommentHandler  *comments.Handler
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		sharedResolveRateLimit(),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			respond.JSON(c, http.StatusOK, deps.Health.Status())
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AccessHandler != nil {
		deps.AccessHandler.RegisterRoutes(api)
	}
	if deps.CommentHandler != nil {
		deps.CommentHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	return r
}

// sharedResolveRateLimit throttles anonymous-guessable share-link opens
// per principal; other routes pass through untouched.
func sharedResolveRateLimit() gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"SHARED_RESOLVE": {Rate: 2, Burst: 10},
		},
		GroupFor: func(c *gin.Context) string {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/documents/shared/") {
				return "SHARED_RESOLVE"
			}
			return ""
		},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
