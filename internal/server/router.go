// Package server assembles the HTTP engine: middleware chain, CORS and the
// /api/v1 route group every feature registers into.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/config"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

// Registrar is a feature handler that mounts its routes.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

// HealthFunc reports whether backing services answer.
type HealthFunc func(ctx context.Context) error

// NewRouter builds the engine.
//
// Order matters: recovery wraps everything, logging sees the final status,
// identity runs before the rate limiter so limits are keyed per user.
func NewRouter(cfg *config.Config, limiter *middleware.RateLimiter, health HealthFunc, features ...Registrar) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.DevUserHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.Identity([]byte(cfg.AuthJWTSecret), cfg.AuthAllowDevHeader))
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	for _, f := range features {
		f.Register(api)
	}

	return router
}
