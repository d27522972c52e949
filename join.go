package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/joynet-go/joynet/joynet"
)

type joinOptions struct {
	player  int
	content []string
	start   bool
}

func newJoinCmd() *cobra.Command {
	var opts joinOptions

	cmd := &cobra.Command{
		Use:   "join <address>",
		Short: "Join a game session",
		Long:  "Join the game session served at address, host:port for udp or a ws:// URL for ws.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			restore, err := setupLog(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer restore()

			ctx, cancel := withSignals(cmd.Context())
			defer cancel()

			return join(ctx, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.player, "player", -1, "player slot to bind controller 0 to, watch if negative")
	cmd.Flags().StringSliceVar(&opts.content, "select", nil, "catalog content to select, by name")
	cmd.Flags().BoolVar(&opts.start, "start", false, "ask the server to start once joined")

	return cmd
}

func dial(address string) (joynet.Client, error) {
	switch transport := confString("transport", "udp"); transport {
	case "udp":
		return joynet.DialUDP(address)
	case "ws":
		return joynet.DialWS(address)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func join(ctx context.Context, address string, opts joinOptions) error {
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
	defer cat.Close()

	if err := cat.Offer(g); err != nil {
		return err
	}

	slot := opts.player
	if slot >= 0 {
		err = g.ConnectController(0, slot)
	} else {
		slot, err = g.Watch()
	}
	if err != nil {
		return err
	}

	for _, name := range opts.content {
		entries, err := cat.Lookup(name)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no content called %q in the catalog", name)
		}

		for _, e := range entries {
			if err := g.SelectContent(slot, e.List, e.Hash); err != nil {
				return err
			}
		}
	}

	cli, err := dial(address)
	if err != nil {
		return err
	}
	if err := g.ConnectToServer(cli); err != nil {
		return err
	}

	log.Printf("Joined %s as player %d", address, slot)

	if opts.start {
		if err := g.Start(); err != nil {
			return err
		}
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	statusTick := time.NewTicker(statusInterval)
	defer statusTick.Stop()

	for {
		select {
		case <-ctx.Done():
			g.DisconnectFromServer()
			return nil
		case <-tick.C:
			g.Update()
			if !g.Connected() {
				return fmt.Errorf("lost connection to %s: %w", address, joynet.ErrTransport)
			}

			for g.InputFrames() > 0 {
				g.DecodeFrame()
			}
		case <-statusTick.C:
			log.Print(status(g))
		}
	}
}
