// Package ingest implements the ingestion listener: a single-goroutine
// datagram receive loop that commits every well-formed message to the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/postbox/internal/core/message"
	"github.com/hay-kot/postbox/internal/core/relay"
)

// ErrOversized is returned by Handle for datagrams that reached the receive
// ceiling. Such payloads may have been truncated by the kernel and are never
// committed.
var ErrOversized = errors.New("datagram exceeds receive ceiling")

// State is the listener's position in its receive loop.
type State int32

const (
	// StateListening means the listener is blocked waiting for a datagram.
	StateListening State = iota
	// StateProcessing means a datagram is being decoded and committed.
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

const (
	minReadBackoff = 10 * time.Millisecond
	maxReadBackoff = time.Second
)

// readBackoff is the pause after the nth consecutive read failure.
func readBackoff(n int) time.Duration {
	d := minReadBackoff << min(n-1, 7)
	return min(d, maxReadBackoff)
}

// Locker is implemented by stores that can enforce a single owner.
type Locker interface {
	Lock() (release func() error, err error)
}

// Listener receives message datagrams one at a time and commits them.
// Exactly one Listener may own a store.
type Listener struct {
	conn        net.PacketConn
	store       message.Store
	log         zerolog.Logger
	now         func() time.Time
	maxDatagram int
	state       atomic.Int32
}

// New creates a listener reading from conn and writing to store.
func New(conn net.PacketConn, store message.Store, log zerolog.Logger) *Listener {
	return &Listener{
		conn:        conn,
		store:       store,
		log:         log,
		now:         time.Now,
		maxDatagram: relay.MaxDatagram,
	}
}

// WithClock replaces the clock used to assign arrival timestamps.
func (l *Listener) WithClock(now func() time.Time) *Listener {
	l.now = now
	return l
}

// WithMaxDatagram sets the receive ceiling. Values outside (0, relay.MaxDatagram]
// are ignored.
func (l *Listener) WithMaxDatagram(n int) *Listener {
	if n > 0 && n <= relay.MaxDatagram {
		l.maxDatagram = n
	}
	return l
}

// State reports whether the listener is waiting or processing.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Addr returns the local address the listener receives on.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Run owns the store, prepares it and receives datagrams until ctx is
// cancelled. The packet connection is closed on return.
func (l *Listener) Run(ctx context.Context) error {
	defer l.conn.Close() //nolint:errcheck

	if locker, ok := l.store.(Locker); ok {
		release, err := locker.Lock()
		if err != nil {
			return fmt.Errorf("lock store: %w", err)
		}
		defer release() //nolint:errcheck
	}

	if err := l.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.Close()
	})
	defer stop()

	l.log.Info().Str("addr", l.conn.LocalAddr().String()).Msg("listener started")

	// One spare byte detects payloads that did not fit.
	buf := make([]byte, l.maxDatagram+1)
	readFailures := 0

	for {
		l.state.Store(int32(StateListening))

		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info().Msg("listener stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("read datagram: %w", err)
			}

			readFailures++
			delay := readBackoff(readFailures)
			l.log.Warn().Err(err).Int("failures", readFailures).Dur("retry_in", delay).Msg("read datagram")

			select {
			case <-ctx.Done():
				l.log.Info().Msg("listener stopped")
				return nil
			case <-time.After(delay):
			}
			continue
		}
		readFailures = 0

		l.state.Store(int32(StateProcessing))

		key, err := l.Handle(ctx, buf[:n])
		switch {
		case err == nil:
			l.log.Debug().Str("key", key).Str("from", from.String()).Msg("message committed")
		case errors.Is(err, relay.ErrMalformed), errors.Is(err, ErrOversized):
			l.log.Warn().Err(err).Str("from", from.String()).Int("bytes", n).Msg("discarding datagram")
		default:
			l.log.Error().Err(err).Str("from", from.String()).Msg("message dropped")
		}
	}
}

// Handle decodes one datagram payload, timestamps it and commits it with a
// read-modify-write of the full document. It returns the key the record was
// stored under.
func (l *Listener) Handle(ctx context.Context, payload []byte) (string, error) {
	if len(payload) > l.maxDatagram {
		return "", fmt.Errorf("%w: more than %d bytes", ErrOversized, l.maxDatagram)
	}

	rec, err := relay.Decode(payload)
	if err != nil {
		return "", err
	}

	now := l.now()

	res := l.store.Load(ctx)
	switch {
	case res.OK():
	case res.Corrupt():
		// Prior history is discarded for this write; the file is only
		// replaced once Save succeeds.
		l.log.Warn().Err(res.Err).Msg("message store corrupted, starting from an empty document")
	default:
		return "", fmt.Errorf("load messages: %w", res.Err)
	}

	doc := res.OrEmpty()
	key := doc.Put(now, rec)

	if err := l.store.Save(ctx, doc); err != nil {
		return "", fmt.Errorf("save messages: %w", err)
	}

	return key, nil
}
