package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/api/handlers"
	"github.com/codyseavey/tcg-binder/internal/api/middleware"
	"github.com/codyseavey/tcg-binder/internal/config"
	"github.com/codyseavey/tcg-binder/internal/logging"
)

func SetupRouter(conf *config.Config, catalog handlers.Catalog, curator handlers.CuratedSource, logger *logrus.Logger) *gin.Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	if conf.Metrics.Enabled {
		router.Use(middleware.Metrics())
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(conf.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = conf.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	catalogHandler := handlers.NewCatalogHandler(catalog, curator, logger)

	// API routes
	api := router.Group("/api/tcg")
	{
		api.GET("/cards", catalogHandler.ListCards)
		api.GET("/cards/:id", catalogHandler.GetCard)
		api.GET("/curated", catalogHandler.GetCurated)
		api.GET("/meta", catalogHandler.GetMeta)
		api.GET("/sets", catalogHandler.GetSets)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if conf.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
