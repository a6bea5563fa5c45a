package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

type GatewayCmd struct {
	flags *Flags
	ports portFlags
}

// NewGatewayCmd creates a new gateway command
func NewGatewayCmd(flags *Flags) *GatewayCmd {
	return &GatewayCmd{flags: flags}
}

// Register adds the gateway command to the application
func (cmd *GatewayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "gateway",
		Usage:       "Run only the HTTP gateway",
		UsageText:   "postbox gateway [options]",
		Description: "Serves the site and relays form submissions to a listener started separately with 'postbox listen'.",
		Flags: []cli.Flag{
			cmd.ports.httpFlag(),
			cmd.ports.relayFlag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GatewayCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if err := cmd.ports.apply(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newGateway(cfg).Run(ctx, cfg.HTTPAddr())
}
