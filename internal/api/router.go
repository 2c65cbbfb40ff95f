// Package api wires together all HTTP routes for the project directory backend.
//
// Route grouping:
//   - /health, /ready and /version are public probes.
//   - /api/v1/repositories and /api/v1/users proxy provider lookups. They accept an
//     optional session and an optional X-Provider-Token; without a token the server's
//     configured provider credentials are used.
//   - /api/v1/projects always requires a session, and claim submissions carry a
//     stricter rate limit than the rest of the API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/project-directory/directory/internal/api/projects"
	"github.com/project-directory/directory/internal/api/repos"
	"github.com/project-directory/directory/internal/api/users"
	"github.com/project-directory/directory/internal/cache"
	rediscache "github.com/project-directory/directory/internal/cache/redis"
	"github.com/project-directory/directory/internal/claims"
	"github.com/project-directory/directory/internal/config"
	"github.com/project-directory/directory/internal/db/repositories"
	"github.com/project-directory/directory/internal/middleware"
	"github.com/project-directory/directory/internal/scm"
)

// Version is reported by /version. It is overridden at link time.
var Version = "0.1.0"

// Dependencies are the constructed services the router serves from.
type Dependencies struct {
	DB       *sqlx.DB
	Cache    cache.Cache
	Provider scm.Provider
	Sessions middleware.TokenValidator
}

// BackgroundServices holds references to background goroutines that must be stopped
// during graceful shutdown. The caller (cmd/server) is responsible for calling
// Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	bg := &BackgroundServices{}

	projectRepo := repositories.NewProjectRepository(deps.DB)
	attemptRepo := repositories.NewClaimAttemptRepository(deps.DB)
	recorder := claims.NewDBRecorder(projectRepo, attemptRepo)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	router.GET("/health", healthCheckHandler(deps.DB))
	router.GET("/ready", readinessHandler(deps.DB, deps.Cache))
	router.GET("/version", versionHandler())

	var apiLimit, claimLimit gin.HandlerFunc
	if cfg.Security.RateLimiting.Enabled {
		general := middleware.DefaultRateLimitConfig()
		general.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
		if cfg.Security.RateLimiting.Burst > 0 {
			general.BurstSize = cfg.Security.RateLimiting.Burst
		}
		apiLimiter := newLimiter(deps.Cache, "ratelimit:api:", general, bg)
		claimLimiter := newLimiter(deps.Cache, "ratelimit:claim:", middleware.ClaimRateLimitConfig(), bg)
		apiLimit = middleware.RateLimitMiddleware(apiLimiter)
		claimLimit = middleware.RateLimitMiddleware(claimLimiter)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(deps.Sessions))
	if apiLimit != nil {
		v1.Use(apiLimit)
	}
	v1.Use(middleware.ProviderMiddleware(deps.Provider))
	{
		repos.NewHandlers().RegisterRoutes(v1.Group("/repositories"))
		users.NewHandlers().RegisterRoutes(v1.Group("/users"))

		projectGroup := v1.Group("/projects", middleware.RequireSession())
		projects.NewHandlers(projectRepo, recorder).RegisterRoutes(projectGroup, claimLimit)
	}

	return router, bg
}

// newLimiter shares the cache's Redis connection when there is one so that limits hold
// across replicas; otherwise it falls back to an in-process limiter.
func newLimiter(c cache.Cache, prefix string, cfg middleware.RateLimitConfig, bg *BackgroundServices) middleware.Limiter {
	if rc, ok := c.(*rediscache.Cache); ok {
		return middleware.NewRedisRateLimiter(rc.Client(), prefix, cfg)
	}
	rl := middleware.NewRateLimiter(cfg)
	bg.rateLimiters = append(bg.rateLimiters, rl)
	return rl
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// pinger is implemented by cache backends that live outside the process.
type pinger interface {
	Ping(ctx context.Context) error
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks the database and, when remote, the cache.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, checks, cache_entries, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, checks, error"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service.
// Unlike the liveness probe (/health), this also checks a remote cache backend so that
// a readiness gate fails when every provider lookup would miss.
func readinessHandler(db *sqlx.DB, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{}

		if err := db.PingContext(ctx.Request.Context()); err != nil {
			checks["database"] = "unhealthy"
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if p, ok := c.(pinger); ok {
			if err := p.Ping(ctx.Request.Context()); err != nil {
				checks["cache"] = "unhealthy"
				ctx.JSON(http.StatusServiceUnavailable, gin.H{
					"ready":  false,
					"checks": checks,
					"error":  "cache not ready",
				})
				return
			}
			checks["cache"] = "healthy"
		}

		body := gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		}
		// Backends that cannot count cheaply report -1.
		if n := c.Len(ctx.Request.Context()); n >= 0 {
			body["cache_entries"] = n
		}
		ctx.JSON(http.StatusOK, body)
	}
}

// @Summary      API version
// @Description  Returns the current build and API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	methods := strings.Join(cfg.Security.CORS.AllowedMethods, ", ")
	if methods == "" {
		methods = "GET, POST, OPTIONS"
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With, "+middleware.ProviderTokenHeader)
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
