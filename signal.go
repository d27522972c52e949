package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// withSignals returns a context that is canceled on SIGINT or SIGTERM.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signalChan)

		select {
		case <-signalChan:
			log.Print("Caught SIGINT or SIGTERM, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
