package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/falub/kazadigate/internal/config"
	"github.com/falub/kazadigate/internal/version"
)

func setupLogger() *slog.Logger {
	// Sensible defaults: info level, text format
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Kazadigate %s - SecurePay key service & transaction gateway\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Keys API:   http://localhost%s/keys\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Gateway:    http://localhost%s/transaction\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Data:       %s\n", config.DataDir())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
