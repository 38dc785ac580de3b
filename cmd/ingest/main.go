// Command ingest imports an hours or articles export from the terminal,
// prompting for every employee name it cannot match on its own.
//
// Flags:
//
//	--source  hours or articles
//	--file    path to the CSV export
//	--config  path to YAML config (default: $CONFIG_PATH or ./config.yaml)
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/newsdesk-analytics/internal/app"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

func main() {
	source := flag.String("source", "", "upload source: hours or articles")
	file := flag.String("file", "", "path to the CSV export")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	if *source == "" || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := app.RunImport(ctx, app.ImportOptions{
		ConfigPath: *configPath,
		Source:     domain.Source(*source),
		File:       *file,
		In:         os.Stdin,
		Out:        os.Stdout,
	})
	app.PrintReceipt(os.Stdout, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}
