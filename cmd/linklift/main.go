// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linklift/internal/api"
	"linklift/internal/api/handlers"
	"linklift/internal/banner"
	"linklift/internal/clicks"
	"linklift/internal/config"
	"linklift/internal/database"
	"linklift/internal/database/repositories"
	"linklift/internal/geo"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

func main() {
	banner.Print()

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	cfg := config.Load(logger)
	logger = logger.WithLevel(cfg.Level())

	db, err := database.NewConnection(&database.Config{
		Path:         cfg.DBPath,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		ConnMaxLife:  cfg.ConnMaxLife,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", logger.Args("path", cfg.DBPath, "error", err))
	}

	// Geo resolution: a MaxMind city database when configured, the
	// embedded range table otherwise. The MaxMind reader is watched so a
	// database refresh on disk takes effect without a restart.
	var resolver geo.Resolver
	var geoWatcher *geo.Watcher
	if cfg.GeoIPCityDBPath != "" {
		maxmind, err := geo.NewMaxMindResolver(cfg.GeoIPCityDBPath, logger)
		if err != nil {
			logger.Fatal("Failed to open GeoIP database",
				logger.Args("path", cfg.GeoIPCityDBPath, "error", err))
		}
		defer maxmind.Close()

		if geoWatcher, err = geo.NewWatcher(maxmind, logger); err != nil {
			logger.Warn("GeoIP database watcher unavailable", logger.Args("error", err))
		} else {
			defer geoWatcher.Close()
		}
		resolver = maxmind
	} else {
		table := geo.NewRangeTable(logger)
		logger.Info("Using embedded IP range table", logger.Args("version", table.Version()))
		resolver = table
	}

	clickRepo := repositories.NewClickEventRepository(db, logger)
	urlRepo := repositories.NewShortURLRepository(db)
	tierRepo := repositories.NewRewardTierRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db, logger)

	recorder := clicks.NewRecorder(clickRepo, resolver, logger, cfg.ClickQueueSize, cfg.ClickBatchSize)
	recorder.Start()

	cleanupService := database.NewCleanupService(
		db, logger, cfg.RetentionDays, 24*time.Hour, cfg.CleanupTime, cfg.VacuumEnabled)
	cleanupService.Start()

	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Handlers{
		Links:     handlers.NewLinkHandler(urlRepo, recorder, logger),
		Analytics: handlers.NewAnalyticsHandler(analyticsRepo, logger),
		Rewards:   handlers.NewRewardsHandler(analyticsRepo, tierRepo, logger),
		System:    handlers.NewSystemHandler(clickRepo, recorder, logger, cfg.DBPath, cfg.RetentionDays),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", logger.Args("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", logger.Args("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", logger.Args("error", err))
	}

	// Stop accepting clicks only after the server is down, then drain.
	recorder.Stop()
	cleanupService.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Shutdown complete")
}
