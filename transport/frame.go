package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wcferry/protocol"
)

type frameDriver struct{}

func (frameDriver) Dial(addr string, opts Options) (Channel, error) {
	c := &frameChannel{addr: addr, opts: opts}
	if err := c.connect(); err != nil {
		return nil, connectFailed(addr, err)
	}
	return c, nil
}

func (frameDriver) Listen(addr string, opts Options) (PeerChannel, error) {
	ln, err := net.Listen("tcp", trimScheme(addr))
	if err != nil {
		return nil, connectFailed(addr, err)
	}
	p := &framePeer{
		addr:     addr,
		opts:     opts,
		ln:       ln,
		attached: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go p.acceptLoop()
	return p, nil
}

// frameChannel is the dialing side. A broken stream is dropped and redialed
// on the next exchange, mirroring how a pair socket reconnects.
type frameChannel struct {
	addr string
	opts Options

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func (c *frameChannel) connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", trimScheme(c.addr), c.opts.SendTimeout)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *frameChannel) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *frameChannel) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return legError(ErrSendFailed, "send", c.addr, ErrClosed)
	}
	if err := c.connect(); err != nil {
		return legError(ErrSendFailed, "send", c.addr, err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.SendTimeout))
	if err := protocol.Encode(c.conn, data); err != nil {
		c.drop()
		return legError(ErrSendFailed, "send", c.addr, netCause(err))
	}
	return nil
}

func (c *frameChannel) Recv() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, legError(ErrRecvFailed, "recv", c.addr, ErrClosed)
	}
	if err := c.connect(); err != nil {
		return nil, legError(ErrRecvFailed, "recv", c.addr, err)
	}
	body, err := readFrame(c.conn, c.opts.RecvTimeout)
	if err != nil {
		// A deadline hit before any byte arrived leaves the stream aligned.
		if !errors.Is(err, errCleanTimeout) {
			c.drop()
		}
		return nil, legError(ErrRecvFailed, "recv", c.addr, netCause(err))
	}
	return body, nil
}

func (c *frameChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.drop()
	return nil
}

// framePeer is the listening side. Only the most recently accepted
// connection is kept; an older one is replaced.
type framePeer struct {
	addr string
	opts Options
	ln   net.Listener

	mu       sync.Mutex
	conn     net.Conn
	attached chan struct{}
	done     chan struct{}
	once     sync.Once

	sendMu sync.Mutex
	recvMu sync.Mutex
}

func (p *framePeer) acceptLoop() {
	for {
		conn, err := p.ln.Accept()
		if err != nil {
			select {
			case <-p.done:
			default:
				logrus.WithField("addr", p.addr).WithError(err).Warn("frame listener stopped")
			}
			return
		}
		p.mu.Lock()
		if p.conn != nil {
			_ = p.conn.Close()
		}
		p.conn = conn
		p.mu.Unlock()

		select {
		case p.attached <- struct{}{}:
		default:
		}
	}
}

// peer returns the attached connection, waiting up to timeout for one.
func (p *framePeer) peer(timeout time.Duration) (net.Conn, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()
		if conn != nil {
			return conn, nil
		}
		select {
		case <-p.attached:
		case <-p.done:
			return nil, ErrClosed
		case <-deadline.C:
			return nil, fmt.Errorf("%w: no peer attached", ErrTimeout)
		}
	}
}

func (p *framePeer) release(conn net.Conn) {
	p.mu.Lock()
	if p.conn == conn {
		p.conn = nil
	}
	p.mu.Unlock()
	_ = conn.Close()
}

func (p *framePeer) Send(data []byte) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	conn, err := p.peer(p.opts.SendTimeout)
	if err != nil {
		return legError(ErrSendFailed, "send", p.addr, err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(p.opts.SendTimeout))
	if err := protocol.Encode(conn, data); err != nil {
		p.release(conn)
		return legError(ErrSendFailed, "send", p.addr, netCause(err))
	}
	return nil
}

func (p *framePeer) Recv() ([]byte, error) {
	p.recvMu.Lock()
	defer p.recvMu.Unlock()

	start := time.Now()
	conn, err := p.peer(p.opts.RecvTimeout)
	if err != nil {
		return nil, legError(ErrRecvFailed, "recv", p.addr, err)
	}
	remaining := p.opts.RecvTimeout - time.Since(start)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	body, err := readFrame(conn, remaining)
	if err != nil {
		if !errors.Is(err, errCleanTimeout) {
			p.release(conn)
		}
		return nil, legError(ErrRecvFailed, "recv", p.addr, netCause(err))
	}
	return body, nil
}

func (p *framePeer) Hangup() error {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (p *framePeer) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		err = p.ln.Close()
		_ = p.Hangup()
	})
	return err
}

var errCleanTimeout = errors.New("deadline before first byte")

// readFrame reads one frame under a deadline. A timeout with nothing consumed
// is reported as errCleanTimeout so the caller can keep the stream.
func readFrame(conn net.Conn, timeout time.Duration) ([]byte, error) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	cr := &countingReader{r: conn}
	body, err := protocol.Decode(cr)
	if err != nil && cr.n == 0 && isNetTimeout(err) {
		return nil, fmt.Errorf("%w: %w", errCleanTimeout, err)
	}
	return body, err
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func isNetTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func netCause(err error) error {
	switch {
	case isNetTimeout(err):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}

func trimScheme(addr string) string {
	return strings.TrimPrefix(addr, "tcp://")
}
