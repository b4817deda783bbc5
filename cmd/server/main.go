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

	"github.com/gin-gonic/gin"

	"vscode-status-server/internal/config"
	"vscode-status-server/internal/db"
	"vscode-status-server/internal/db/migrate"
	"vscode-status-server/internal/hub"
	"vscode-status-server/internal/middleware"
	"vscode-status-server/internal/report"
	"vscode-status-server/internal/server"
	"vscode-status-server/internal/service"
	"vscode-status-server/internal/store"
	"vscode-status-server/internal/telemetry"
	"vscode-status-server/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	var (
		repo    store.Repository
		tlog    telemetry.Log
		tracker telemetry.Tracker
	)
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer sqlDB.Close()

		if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
			log.Fatalf("migrate: %v", err)
		}

		repo = store.NewPostgresStore(sqlDB)
		tlog = telemetry.NewPostgresLog(sqlDB)
		tracker = telemetry.NewPostgresTracker(sqlDB)
	} else {
		log.Print("DATABASE_URL not set; using in-memory storage (state is lost on restart)")
		repo = store.NewMemoryStore()
		tlog = telemetry.NewMemoryLog()
		tracker = telemetry.NewMemoryTracker()
	}

	statusHub := hub.New()
	svc := service.New(repo, statusHub, cfg.StatusTTLDuration())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WebhookURL != "" {
		periods := []report.Period{
			{Name: "standard", Every: cfg.ReportIntervalDuration()},
		}
		if cfg.DebugReportsEnabled {
			periods = append(periods, report.Period{
				Name:        "debug",
				Every:       cfg.DebugReportIntervalDuration(),
				SeedFromNow: true,
			})
		}
		scheduler := report.NewScheduler(
			tracker,
			report.NewAggregator(tlog),
			webhook.New(cfg.WebhookURL),
			periods,
			cfg.ReportPollIntervalDuration(),
			cfg.ReportChunkDelayDuration(),
		)
		go scheduler.Run(ctx)
	} else {
		log.Print("WEBHOOK_URL not set; telemetry reports disabled")
	}

	router := server.NewRouter(server.Deps{
		Service:      svc,
		Hub:          statusHub,
		Recorder:     telemetry.NewRecorder(tlog),
		ClientIP:     middleware.ClientIP(cfg.CloudflareTunnel),
		RateLimiting: cfg.RateLimiting,
	})

	srv := server.NewHTTPServer(cfg, router)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Print("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Print("server stopped")
}
