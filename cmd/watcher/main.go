package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"agilequiz/internal/config"
	"agilequiz/internal/infra"
	"agilequiz/internal/infra/gdoc"
	"agilequiz/internal/logger"
	"agilequiz/internal/sheetsync"
	"agilequiz/internal/watch"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheet := cfg.Repository.Sheet
	if sheet.DocumentID == "" || sheet.APIToken == "" {
		zl.Fatal("watcher requires repository.sheet.document_id and GOOGLE_API_TOKEN")
	}

	repo, cleanup, err := infra.NewQuestionRepository(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to build question repository", zap.Error(err))
	}
	defer cleanup()

	source := gdoc.New(sheet.DocumentID, sheet.APIToken)
	syncer := sheetsync.New(repo, zl)
	watcher := watch.New(source, syncer, cfg.Watcher.PollInterval, cfg.Watcher.RetryBackoff, zl)

	// Optional scheduled full resync, independent of revision polling.
	if cfg.Watcher.ResyncSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.Watcher.ResyncSchedule, func() {
			if err := watcher.ForceSync(ctx); err != nil {
				zl.Error("scheduled resync failed", zap.Error(err))
			}
		})
		if err != nil {
			zl.Fatal("invalid watcher.resync_schedule", zap.Error(err))
		}
		c.Start()
		defer c.Stop()
	}

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		zl.Fatal("watcher stopped unexpectedly", zap.Error(err))
	}
	zl.Info("shutdown signal received")
}
