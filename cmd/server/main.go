package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"probation_app_go/config"
	"probation_app_go/db"
	"probation_app_go/handlers"
	"probation_app_go/logger"
	"probation_app_go/models"
	"probation_app_go/services"
	"probation_app_go/services/jobs"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat, "probation-app")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := services.SeedAdminFromEnv(db.DB); err != nil {
		log.Error("failed to seed administrator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services.InitializeStorage(cfg)
	cache := services.ConnectCache(ctx, cfg)
	defer cache.Close()
	handlers.Configure(cache, services.NewChromePDF(cfg.ChromePath))

	scheduler, err := jobs.StartScheduler(db.DB, cfg)
	if err != nil {
		log.Fatal("failed to start job scheduler", zap.Error(err))
	}

	e := handlers.NewRouter(cfg)
	e.Static("/static", "static")

	go func() {
		log.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
