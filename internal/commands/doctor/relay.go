package doctor

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// RelayCheck reports whether a listener appears to own the relay address.
// A free address is only a warning: the listener may simply not be running.
type RelayCheck struct {
	addr string
}

// NewRelayCheck creates a check for the listener's datagram address.
func NewRelayCheck(addr string) *RelayCheck {
	return &RelayCheck{addr: addr}
}

func (c *RelayCheck) Name() string {
	return "Relay"
}

func (c *RelayCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", c.addr)
	if errors.Is(err, syscall.EADDRINUSE) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Listener",
			Status: StatusPass,
			Detail: c.addr + " is bound",
		})
		return result
	}
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Listener",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	_ = conn.Close()

	result.Items = append(result.Items, CheckItem{
		Label:  "Listener",
		Status: StatusWarn,
		Detail: c.addr + " is free; submissions are lost until 'postbox listen' or 'postbox serve' runs",
	})
	return result
}
