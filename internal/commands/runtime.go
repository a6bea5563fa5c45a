package commands

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/postbox/internal/core/config"
	"github.com/hay-kot/postbox/internal/core/message"
	"github.com/hay-kot/postbox/internal/core/relay"
	"github.com/hay-kot/postbox/internal/gateway"
	"github.com/hay-kot/postbox/internal/ingest"
	"github.com/hay-kot/postbox/internal/web"
)

// portFlags are the port overrides shared by the long-running commands.
type portFlags struct {
	httpPort  int
	relayPort int
}

func (pf *portFlags) httpFlag() cli.Flag {
	return &cli.IntFlag{
		Name:        "http-port",
		Usage:       "gateway TCP port (overrides config)",
		Sources:     cli.EnvVars("POSTBOX_HTTP_PORT"),
		Destination: &pf.httpPort,
	}
}

func (pf *portFlags) relayFlag() cli.Flag {
	return &cli.IntFlag{
		Name:        "relay-port",
		Usage:       "listener UDP port (overrides config)",
		Sources:     cli.EnvVars("POSTBOX_RELAY_PORT"),
		Destination: &pf.relayPort,
	}
}

// apply copies explicitly set ports onto cfg and revalidates it.
func (pf *portFlags) apply(cfg *config.Config) error {
	if pf.httpPort != 0 {
		cfg.HTTP.Port = pf.httpPort
	}
	if pf.relayPort != 0 {
		cfg.Relay.Port = pf.relayPort
	}
	return cfg.Validate()
}

// newListener binds the relay address and builds a listener over store.
func newListener(cfg *config.Config, store message.Store) (*ingest.Listener, error) {
	conn, err := net.ListenPacket("udp", cfg.RelayAddr())
	if err != nil {
		return nil, fmt.Errorf("bind relay %s: %w", cfg.RelayAddr(), err)
	}

	logger := log.With().Str("component", "listener").Logger()
	return ingest.New(conn, store, logger).WithMaxDatagram(cfg.Relay.MaxDatagram), nil
}

// newSender builds the relay sender the gateway and the send command use.
func newSender(cfg *config.Config) *relay.UDPSender {
	return relay.NewUDPSender(cfg.RelayAddr()).
		WithTimeout(cfg.Relay.SendTimeout).
		WithMaxDatagram(cfg.Relay.MaxDatagram)
}

// newGateway builds the HTTP tier over the configured site.
func newGateway(cfg *config.Config) *gateway.Server {
	logger := log.With().Str("component", "gateway").Logger()
	return gateway.NewServer(web.Site(cfg.WebDir), newSender(cfg), logger, gateway.Options{
		Mode:         cfg.HTTP.Mode,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		SendTimeout:  cfg.Relay.SendTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		StaticDeny:   cfg.StaticDeny,
	})
}
