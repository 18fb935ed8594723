package transport

import (
	"errors"
	"fmt"
	"sync"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pair1"
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

type nngDriver struct{}

// Dial connects synchronously, so an unreachable worker fails here rather
// than on the first send. After a peer loss the socket redials on its own.
func (nngDriver) Dial(addr string, opts Options) (Channel, error) {
	sock, err := newPairSocket(opts)
	if err != nil {
		return nil, connectFailed(addr, err)
	}
	if err := sock.Dial(addr); err != nil {
		_ = sock.Close()
		return nil, connectFailed(addr, err)
	}
	return &nngChannel{sock: sock, addr: addr}, nil
}

func (nngDriver) Listen(addr string, opts Options) (PeerChannel, error) {
	sock, err := newPairSocket(opts)
	if err != nil {
		return nil, connectFailed(addr, err)
	}
	if err := sock.Listen(addr); err != nil {
		_ = sock.Close()
		return nil, connectFailed(addr, err)
	}
	return &nngChannel{sock: sock, addr: addr}, nil
}

func newPairSocket(opts Options) (mangos.Socket, error) {
	sock, err := pair1.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create pair1 socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, opts.RecvTimeout); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("set recv timeout: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSendDeadline, opts.SendTimeout); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("set send timeout: %w", err)
	}
	return sock, nil
}

type nngChannel struct {
	sock mangos.Socket
	addr string

	mu       sync.Mutex
	lastPipe mangos.Pipe // pipe of the last received message
}

func (c *nngChannel) Send(data []byte) error {
	if err := c.sock.Send(data); err != nil {
		return legError(ErrSendFailed, "send", c.addr, nngCause(err))
	}
	return nil
}

func (c *nngChannel) Recv() ([]byte, error) {
	msg, err := c.sock.RecvMsg()
	if err != nil {
		return nil, legError(ErrRecvFailed, "recv", c.addr, nngCause(err))
	}
	body := append([]byte(nil), msg.Body...)

	c.mu.Lock()
	c.lastPipe = msg.Pipe
	c.mu.Unlock()

	msg.Free()
	return body, nil
}

func (c *nngChannel) Hangup() error {
	c.mu.Lock()
	p := c.lastPipe
	c.lastPipe = nil
	c.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Close()
}

func (c *nngChannel) Close() error {
	return c.sock.Close()
}

func nngCause(err error) error {
	switch {
	case errors.Is(err, mangos.ErrRecvTimeout), errors.Is(err, mangos.ErrSendTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, mangos.ErrClosed):
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
