package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

type ListenCmd struct {
	flags *Flags
	ports portFlags
}

// NewListenCmd creates a new listen command
func NewListenCmd(flags *Flags) *ListenCmd {
	return &ListenCmd{flags: flags}
}

// Register adds the listen command to the application
func (cmd *ListenCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "listen",
		Usage:       "Run only the datagram listener",
		UsageText:   "postbox listen [options]",
		Description: "Receives message datagrams and appends them to the message store. Only one listener may own a store.",
		Flags: []cli.Flag{
			cmd.ports.relayFlag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ListenCmd) run(ctx context.Context, c *cli.Command) error {
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

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return listener.Run(ctx)
}
