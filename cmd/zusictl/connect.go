package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/zusictl/internal/config"
	"github.com/danmuck/zusictl/internal/observability"
	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/danmuck/zusictl/internal/protocol/schema"
	"github.com/danmuck/zusictl/internal/protocol/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func connectCmd() *cobra.Command {
	var (
		configPath string
		address    string
		watch      bool
		record     string
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Handshake with Zusi and subscribe to data",
		Long: `Connect to the configured Zusi host, run HELLO and NEEDED_DATA and,
with --watch, print every pushed reading until interrupted or the host
closes the connection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(configPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			var capture io.Writer
			if record != "" {
				f, err := os.OpenFile(record, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				capture = f
			}
			return runConnect(ctx, cfg, watchOptions{enabled: watch, capture: capture}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to zusictl.toml (defaults when empty)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Zusi host:port, overrides the config")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print data pushes after subscribing")
	cmd.Flags().StringVarP(&record, "record", "r", "", "Write every watched message to this capture file (readable by dump)")

	return cmd
}

type watchOptions struct {
	enabled bool
	// capture receives each message re-encoded on the wire format.
	capture io.Writer
}

func runConnect(ctx context.Context, cfg config.ClientConfig, watch watchOptions, out io.Writer) error {
	if cfg.MetricsAddr != "" {
		go func() {
			if err := observability.Serve(ctx, cfg.MetricsAddr, "zusictl"); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
	}

	client, err := session.Dial(ctx, cfg.Session())
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.Handshake(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "connected to %s (zusi %s, session %s)\n", cfg.Address, info.Version, client.ID())

	sub := cfg.Subscription()
	if err := client.Subscribe(ctx, sub); err != nil {
		return err
	}
	fmt.Fprintf(out, "subscribed: cab_displays=%d program_data=%d cab_operation=%t\n",
		len(sub.CabDisplays), len(sub.ProgramData), sub.CabOperation)

	if !watch.enabled {
		return nil
	}
	return watchData(ctx, client, watch.capture, out)
}

// watchData prints readings until ctx ends or the host hangs up.
func watchData(ctx context.Context, client *session.Client, capture, out io.Writer) error {
	for {
		msg, err := client.Next(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			log.Info().Str("session", client.ID()).Msg("zusi closed the connection")
			return nil
		default:
			return err
		}

		if capture != nil {
			if err := protocol.Encode(capture, &msg); err != nil {
				return fmt.Errorf("record: %w", err)
			}
		}

		cmd, readings, err := schema.DataReadings(&msg)
		if err != nil {
			log.Debug().Str("message", msg.String()).Msg("skipping non-data message")
			continue
		}
		for _, r := range readings {
			fmt.Fprintln(out, formatReading(cmd, r))
		}
	}
}

func formatReading(cmd uint16, r schema.Reading) string {
	name := schema.DataCommandName(cmd)
	if v, err := r.Float(); err == nil && len(r.Value.Value) == 4 {
		return fmt.Sprintf("%s 0x%04x %g", name, r.ID, v)
	}
	return fmt.Sprintf("%s 0x%04x %v", name, r.ID, r.Value.Value)
}
