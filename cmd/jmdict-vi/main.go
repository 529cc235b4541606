package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hungdoba/jmdict-vi/internal/cli"
)

func main() {
	// Interrupt stops dispatching new entries and lets in-flight work drain.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
