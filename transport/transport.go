// Package transport owns the paired-socket channels the client talks over.
//
// A Channel performs one blocking send or receive per call, each bounded by
// the timeouts fixed when the channel was opened. There is no background
// reader, no multiplexing and no retry: one request goes out, one reply comes
// back, and any failure is reported as the leg that broke.
//
//	caller ──Send(req)──→ ┌─────────┐ ──→ worker
//	caller ←──Recv()───── │ Channel │ ←── worker
//	                      └─────────┘
//
// Two drivers are available: "nng" speaks the NNG Pair1 protocol the worker
// listens with, "frame" carries protocol frames over a plain TCP stream.
package transport

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	KindNNG   = "nng"
	KindFrame = "frame"

	DefaultTimeout = 5000 * time.Millisecond
)

var (
	ErrConnectFailed = errors.New("transport: connect failed")
	ErrSendFailed    = errors.New("transport: send failed")
	ErrRecvFailed    = errors.New("transport: recv failed")

	// Causes joined into the leg errors above.
	ErrTimeout = errors.New("timed out")
	ErrClosed  = errors.New("channel closed")
)

// Channel is one live paired socket. It is owned by whoever opened it.
type Channel interface {
	Send(data []byte) error
	Recv() ([]byte, error)
	Close() error
}

// PeerChannel is the listening side of a pair. Hangup drops the currently
// attached peer without closing the listener.
type PeerChannel interface {
	Channel
	Hangup() error
}

// Options are fixed for the lifetime of a channel.
type Options struct {
	Kind        string
	SendTimeout time.Duration
	RecvTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Kind == "" {
		o.Kind = KindNNG
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = DefaultTimeout
	}
	if o.RecvTimeout <= 0 {
		o.RecvTimeout = DefaultTimeout
	}
	return o
}

type Driver interface {
	Dial(addr string, opts Options) (Channel, error)
	Listen(addr string, opts Options) (PeerChannel, error)
}

var drivers = map[string]Driver{
	KindNNG:   nngDriver{},
	KindFrame: frameDriver{},
}

// Kinds lists the registered driver names.
func Kinds() []string {
	kinds := make([]string, 0, len(drivers))
	for k := range drivers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Dial opens a channel to addr. Both timeouts are set before the first
// exchange; a failure to reach addr is ErrConnectFailed.
func Dial(addr string, opts Options) (Channel, error) {
	opts = opts.withDefaults()
	d, ok := drivers[opts.Kind]
	if !ok {
		return nil, connectFailed(addr, fmt.Errorf("unknown transport kind %q", opts.Kind))
	}
	return d.Dial(addr, opts)
}

// Listen binds addr and waits for a single peer.
func Listen(addr string, opts Options) (PeerChannel, error) {
	opts = opts.withDefaults()
	d, ok := drivers[opts.Kind]
	if !ok {
		return nil, connectFailed(addr, fmt.Errorf("unknown transport kind %q", opts.Kind))
	}
	return d.Listen(addr, opts)
}

// Call sends req and waits for exactly one reply. It never retries.
func Call(ch Channel, req []byte) ([]byte, error) {
	if err := ch.Send(req); err != nil {
		return nil, err
	}
	return ch.Recv()
}

// IsTimeout reports whether err was caused by a send or receive deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func connectFailed(addr string, cause error) error {
	logrus.WithFields(logrus.Fields{"op": "dial", "addr": addr}).WithError(cause).Error("transport connect failed")
	return fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, cause)
}

func legError(kind error, op, addr string, cause error) error {
	entry := logrus.WithFields(logrus.Fields{"op": op, "addr": addr}).WithError(cause)
	if errors.Is(cause, ErrTimeout) {
		entry.Debug("transport operation timed out")
	} else {
		entry.Warn("transport operation failed")
	}
	return fmt.Errorf("%w: %s: %w", kind, addr, cause)
}
