package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resume-optimizer/internal/analyses"
	"resume-optimizer/internal/shared/auth"
	"resume-optimizer/internal/shared/config"
	"resume-optimizer/internal/shared/metrics"
	"resume-optimizer/internal/shared/server/middleware"
	"resume-optimizer/internal/users"
)

// livenessMessage is matched by the frontend's health probe.
const livenessMessage = "Resume Optimization API is running"

// Deps carries everything the router needs, built once in bootstrap.
type Deps struct {
	Config   config.Config
	Tokens   *auth.TokenManager
	Users    *users.Handler
	Analyses *analyses.Handler
	Metrics  *metrics.Collector
	DB       *sql.DB
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": livenessMessage})
	})
	r.GET("/healthz", func(c *gin.Context) {
		storage := "memory"
		if deps.DB != nil {
			storage = "postgres"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "storage": storage})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": storage})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	public := r.Group("/api")
	deps.Users.RegisterAuthRoutes(public)

	authed := r.Group("/api", middleware.Auth(deps.Tokens))
	deps.Users.RegisterRoutes(authed)

	// One analyze per 10s per user on average, small burst for retries.
	limiter := middleware.NewRateLimiter(middleware.RateLimitRule{Rate: rate.Limit(0.1), Burst: 3})
	deps.Analyses.RegisterRoutes(authed, limiter)

	return r
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
