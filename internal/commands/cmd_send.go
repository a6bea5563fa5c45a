package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/postbox/internal/core/message"
	"github.com/hay-kot/postbox/internal/printer"
)

type SendCmd struct {
	flags    *Flags
	ports    portFlags
	username string
}

// NewSendCmd creates a new send command
func NewSendCmd(flags *Flags) *SendCmd {
	return &SendCmd{flags: flags}
}

// Register adds the send command to the application
func (cmd *SendCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "send",
		Usage:     "Relay a message to the listener",
		UsageText: "postbox send [options] <message...>",
		Description: `Sends one message datagram to the listener, exactly as the web form would.

Delivery is fire-and-forget: success means the datagram was handed to the
network, not that a listener stored it.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "sender name",
				Sources:     cli.EnvVars("USER"),
				Destination: &cmd.username,
			},
			cmd.ports.relayFlag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SendCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if err := cmd.ports.apply(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	rec := message.Record{
		Username: cmd.username,
		Message:  strings.Join(c.Args().Slice(), " "),
	}

	sender := newSender(cfg)
	if err := sender.Send(ctx, rec); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	printer.Ctx(ctx).Successf("Sent to %s", sender.Addr())
	return nil
}
