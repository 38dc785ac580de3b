// Command seeder loads the employee roster into the registry so that the
// first uploads already match known staff. It is intended to be run offline,
// not as part of the main server, and is safe to re-run.
//
// Flags:
//
//	--roster         path to the roster CSV (overrides the seeder config)
//	--dry-run        parse the roster without writing to DB
//	--seeder-config  path to seeder YAML config file
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/employee"
	"github.com/heartmarshall/newsdesk-analytics/internal/app"
	"github.com/heartmarshall/newsdesk-analytics/internal/app/seeder"
	"github.com/heartmarshall/newsdesk-analytics/internal/config"
)

// Compile-time interface assertion.
var _ seeder.EmployeeRepo = (*employee.Repo)(nil)

func main() {
	rosterFlag := flag.String("roster", "", "path to the roster CSV")
	dryRunFlag := flag.Bool("dry-run", false, "parse the roster without writing to DB")
	seederConfigFlag := flag.String("seeder-config", "", "path to seeder YAML config file")
	flag.Parse()

	// Load app config (for DB connection).
	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)

	seederCfg, err := seeder.LoadConfig(*seederConfigFlag)
	if err != nil {
		logger.Error("load seeder config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if *rosterFlag != "" {
		seederCfg.RosterPath = *rosterFlag
	}
	if *dryRunFlag {
		seederCfg.DryRun = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, appCfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	pipeline := seeder.NewPipeline(logger, employee.New(pool), postgres.NewTxManager(pool), *seederCfg)
	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("roster seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
	if len(result.Errors) > 0 {
		logger.Warn("roster seeded with errors", slog.Int("errors", len(result.Errors)))
		os.Exit(1)
	}
}
