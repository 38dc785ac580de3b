package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/sheet"
	"github.com/heartmarshall/newsdesk-analytics/internal/cli"
	"github.com/heartmarshall/newsdesk-analytics/internal/config"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/ingestion"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
	"github.com/heartmarshall/newsdesk-analytics/pkg/ctxutil"
)

// ImportOptions configures one terminal import.
type ImportOptions struct {
	ConfigPath string
	Source     domain.Source
	File       string
	// In and Out are the terminal; conflicts are prompted on them.
	In  io.Reader
	Out io.Writer
}

// RunImport reads an export, resolves its names interactively and writes the
// rows. Parse errors are reported and their rows skipped.
func RunImport(ctx context.Context, opts ImportOptions) (*ingestion.ImportResult, error) {
	if !opts.Source.IsValid() {
		return nil, domain.NewValidationError("source", "must be hours or articles")
	}

	cfg, err := config.LoadFrom(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.Log)
	ctx = ctxutil.WithSource(ctx, opts.Source.String())

	f, err := os.Open(opts.File)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	parsed, err := sheet.Read(f, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	logger.InfoContext(ctx, "export read",
		slog.String("file", opts.File),
		slog.String("encoding", parsed.Encoding),
		slog.Int("rows", len(parsed.Rows)),
		slog.Int("parse_errors", len(parsed.Errors)),
	)
	for _, e := range parsed.Errors {
		fmt.Fprintf(opts.Out, "skipped %v\n", e)
	}
	if len(parsed.Rows) == 0 {
		return &ingestion.ImportResult{Receipt: &ingestion.Receipt{Errors: []string{}}}, nil
	}

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	resolver := resolution.NewInteractive(logger, cli.NewPrompter(opts.In, opts.Out))
	result, err := c.Ingestion.Import(ctx, parsed.Rows, opts.Source, resolver)
	if result != nil && result.Cancelled {
		fmt.Fprintln(opts.Out, "resolution cancelled; rows of unresolved names were skipped")
	}
	if errors.Is(err, cli.ErrInputClosed) {
		return result, fmt.Errorf("terminal closed before resolution finished: %w", err)
	}
	return result, err
}

// PrintReceipt writes a human-readable receipt.
func PrintReceipt(w io.Writer, r *ingestion.ImportResult) {
	if r == nil || r.Receipt == nil {
		return
	}
	fmt.Fprintf(w, "inserted %d, updated %d, skipped %d, employees created %d\n",
		r.Receipt.Inserted, r.Receipt.Updated, r.Receipt.Skipped, r.Created)
	for _, n := range r.Receipt.Notices {
		fmt.Fprintf(w, "note: %s\n", n)
	}
	for _, e := range r.Receipt.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
}
