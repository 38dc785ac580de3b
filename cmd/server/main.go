// Command server runs the newsdesk analytics HTTP API.
//
// Flags:
//
//	--config  path to YAML config (default: $CONFIG_PATH or ./config.yaml)
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/newsdesk-analytics/internal/app"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, *configPath); err != nil {
		log.Printf("server: %v", err)
		os.Exit(1)
	}
}
