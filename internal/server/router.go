// Package server assembles the gin engine served by cmd/api-server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"animehub/internal/auth"
	"animehub/internal/catalog"
	"animehub/internal/middleware"
	synchub "animehub/internal/sync"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *auth.Service
	Catalog *catalog.Service
	Hub     *synchub.Hub
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Metrics(), middleware.AccessLog())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", readyHandler(d))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.Hub != nil {
		router.GET("/ws", synchub.WSHandler(d.Hub))
	}

	auth.NewHandler(d.Auth).RegisterRoutes(router)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(d.Auth))
	catalog.NewHandler(d.Catalog).RegisterRoutes(protected)

	return router
}

func readyHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats synchub.Stats
		if d.Hub != nil {
			stats = d.Hub.Stats()
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx, d.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
