package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/joynet-go/joynet/joynet"
)

const statusInterval = time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a game session to clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			restore, err := setupLog(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer restore()

			ctx, cancel := withSignals(cmd.Context())
			defer cancel()

			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	interval, err := tickInterval()
	if err != nil {
		return err
	}

	reg := joynet.NewRegistry()
	defer End(reg)

	g, err := newGame(reg)
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	err = cat.Offer(g)
	cat.Close()
	if err != nil {
		return err
	}

	host := confString("host", "0.0.0.0:40000")
	maxClients := confInt("max_clients", 0)

	switch transport := confString("transport", "udp"); transport {
	case "udp":
		srv, err := joynet.ListenUDP(host, maxClients)
		if err != nil {
			return err
		}
		if err := g.OpenServer(srv); err != nil {
			srv.Close()
			return err
		}
	case "ws":
		srv := joynet.NewWSServer(maxClients)
		if err := g.OpenServer(srv); err != nil {
			return err
		}

		hs := &http.Server{Addr: host, Handler: srv}
		go func() {
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Print(err)
			}
		}()
		defer hs.Close()
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}

	log.Print("Listening on " + host)

	tick := time.NewTicker(interval)
	defer tick.Stop()

	statusTick := time.NewTicker(statusInterval)
	defer statusTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			g.UpdateServer()

			// Nobody plays on the server itself, keep the buffer drained.
			for g.InputFrames() > 0 {
				g.DecodeFrame()
			}
		case <-statusTick.C:
			log.Print(status(g))
		}
	}
}
