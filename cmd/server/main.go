package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlienQ7/Task/internal/clock"
	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/db"
	"github.com/AlienQ7/Task/internal/handler"
	"github.com/AlienQ7/Task/internal/logger"
	"github.com/AlienQ7/Task/internal/router"
	"github.com/AlienQ7/Task/internal/service"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.L.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.S.Fatalw("failed to initialize database", "path", cfg.DatabasePath, "error", err)
	}

	clk, err := clockFromConfig(cfg)
	if err != nil {
		logger.S.Fatalw("failed to load reset timezone", "zone", cfg.Balance.Timezone, "error", err)
	}

	store := db.NewStore(db.DB)
	ranks := service.DefaultRankTable()
	auth := service.NewAuthService(store, clk, cfg.Balance, ranks)
	progression := service.NewProgressionService(store, clk, cfg.Balance, ranks)
	api := handler.NewAPI(auth, progression)

	r := router.Setup(cfg, api)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		logger.S.Infow("server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.S.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.S.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.S.Errorw("forced shutdown", "error", err)
	}
}

func clockFromConfig(cfg config.AppConfig) (clock.Clock, error) {
	return clock.NewZoneClock(cfg.Balance.Timezone)
}
