package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/postbox/internal/styles"
)

type ServeCmd struct {
	flags *Flags
	ports portFlags
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the gateway and the listener together",
		UsageText: "postbox serve [options]",
		Description: `Starts the HTTP gateway and the datagram listener in one process.

The gateway serves the site and relays form submissions to the listener,
which appends them to the message store. SIGINT or SIGTERM stops both.`,
		Flags: []cli.Flag{
			cmd.ports.httpFlag(),
			cmd.ports.relayFlag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if err := cmd.ports.apply(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore() //nolint:errcheck

	listener, err := newListener(cfg, store)
	if err != nil {
		return err
	}
	server := newGateway(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Run(ctx)
	})
	g.Go(func() error {
		return server.Run(ctx, cfg.HTTPAddr())
	})

	_, _ = fmt.Fprintln(os.Stderr, styles.BannerStyle.Render(styles.Banner))
	log.Info().
		Str("http", cfg.HTTPAddr()).
		Str("relay", cfg.RelayAddr()).
		Str("store", cfg.StoragePath()).
		Msg("postbox running")

	return g.Wait()
}
