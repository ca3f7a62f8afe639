package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apartsfinder/afind/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the running search on interrupt so the browser is closed
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		cancel()
		<-sigCh
		os.Exit(1)
	}()

	cli.Execute(ctx)
}
