package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/api"
	"github.com/codyseavey/tcg-binder/internal/cache"
	"github.com/codyseavey/tcg-binder/internal/clock"
	"github.com/codyseavey/tcg-binder/internal/config"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/services"
)

func main() {
	configPath := flag.String("config", os.Getenv("TCG_CONFIG"), "path to a YAML config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(conf.Logger)

	if !conf.Upstream.HasAPIKey() {
		logger.Warn("No catalog API key configured; requests are subject to the anonymous rate limit")
	}

	clk := clock.Real{}
	resultCache, err := cache.New(conf.Cache.MaxEntries, clk)
	if err != nil {
		logger.Fatalf("Failed to initialize result cache: %v", err)
	}

	upstream := services.NewUpstreamClient(conf.Upstream, logger)
	catalog := services.NewCatalogService(upstream, resultCache, logger)
	curator := services.NewCurator(catalog, resultCache, conf.Curation, clk, logger)

	router := api.SetupRouter(conf, catalog, curator, logger)

	port := strconv.Itoa(conf.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
