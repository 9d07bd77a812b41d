// Package main provides the directory portal server entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mferrari98/cont-portal/internal/app"
	"github.com/mferrari98/cont-portal/internal/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Build the application: logger, metrics, source, cache, HTTP server
	application, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Run until a shutdown signal arrives
	if err := application.Run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}
