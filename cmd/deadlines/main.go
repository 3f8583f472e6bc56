// Command deadlines marks overdue response tracks and sends the H-1
// reminders. It runs once and exits; schedule it with cron.
package main

import (
	"context"
	"log"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/config"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/bootstrap"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/notify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zapLogger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := bootstrap.OpenDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	timeout, err := time.ParseDuration(config.GetEnvOrDefault("DEADLINE_SWEEP_TIMEOUT", "2m"))
	if err != nil {
		zapLogger.Fatal("Invalid DEADLINE_SWEEP_TIMEOUT", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	svc := service.NewServices(repository.NewRepositories(db), nil, cfg, zapLogger, nil, notifier, nil)

	res, err := svc.Response.Sweep(ctx, time.Now())
	if err != nil {
		zapLogger.Fatal("Deadline sweep failed", zap.Error(err))
	}
	zapLogger.Info("Deadline sweep done",
		zap.Int("overdue", res.Overdue),
		zap.Int("reminded", res.Reminded),
	)
}
