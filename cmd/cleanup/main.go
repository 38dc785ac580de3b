// Command cleanup removes daily hours and articles older than the configured
// retention period. It is intended to be invoked by an external cron job,
// not as an in-process goroutine. Employees and aliases are never removed.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/article"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/hours"
	"github.com/heartmarshall/newsdesk-analytics/internal/app"
	"github.com/heartmarshall/newsdesk-analytics/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if cfg.Ingestion.RetentionDays == 0 {
		logger.Info("retention disabled, nothing to do")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	hoursRepo := hours.New(pool)
	articleRepo := article.New(pool)
	txm := postgres.NewTxManager(pool)

	now := time.Now().UTC()
	threshold := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -cfg.Ingestion.RetentionDays)

	var deletedHours, deletedArticles int64
	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if deletedHours, err = hoursRepo.DeleteBefore(ctx, threshold); err != nil {
			return err
		}
		if deletedArticles, err = articleRepo.DeleteBefore(ctx, threshold); err != nil {
			return fmt.Errorf("articles: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("retention cleanup failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("retention cleanup completed",
		slog.Int64("deleted_hours", deletedHours),
		slog.Int64("deleted_articles", deletedArticles),
		slog.Time("threshold", threshold),
	)
}
