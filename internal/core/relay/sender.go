package relay

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/hay-kot/postbox/internal/core/message"
)

const defaultSendTimeout = 2 * time.Second

// Sender hands a record to the listener without waiting for it to be stored.
type Sender interface {
	Send(ctx context.Context, rec message.Record) error
}

// UDPSender transmits each record as one datagram to a fixed address.
type UDPSender struct {
	addr        string
	timeout     time.Duration
	maxDatagram int
}

// NewUDPSender creates a sender targeting addr (host:port).
func NewUDPSender(addr string) *UDPSender {
	return &UDPSender{
		addr:        addr,
		timeout:     defaultSendTimeout,
		maxDatagram: MaxDatagram,
	}
}

// WithTimeout bounds how long a single send may block.
func (s *UDPSender) WithTimeout(d time.Duration) *UDPSender {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithMaxDatagram sets the payload ceiling. Values outside (0, MaxDatagram] are ignored.
func (s *UDPSender) WithMaxDatagram(n int) *UDPSender {
	if n > 0 && n <= MaxDatagram {
		s.maxDatagram = n
	}
	return s
}

// Addr returns the target address.
func (s *UDPSender) Addr() string {
	return s.addr
}

// Send writes rec as a single datagram. A nil error only means the datagram
// left this process; it says nothing about delivery.
func (s *UDPSender) Send(ctx context.Context, rec message.Record) error {
	payload, err := Encode(rec)
	if err != nil {
		return err
	}

	if len(payload) > s.maxDatagram {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(payload), s.maxDatagram)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", s.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.addr, err)
	}
	defer conn.Close() //nolint:errcheck

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write datagram: %w", err)
	}

	return nil
}
