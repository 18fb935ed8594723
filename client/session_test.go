package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wcferry/codec"
	"wcferry/internal/testsupport"
	"wcferry/message"
	"wcferry/middleware"
	"wcferry/server"
	"wcferry/transport"
)

func testOptions(kind string) transport.Options {
	return transport.Options{Kind: kind, SendTimeout: time.Second, RecvTimeout: time.Second}
}

type worker struct {
	*server.Server
	opts Options
}

// startWorker runs a mock worker on free ports and returns options that reach it.
func startWorker(t *testing.T, kind string) *worker {
	t.Helper()
	testsupport.QuietLogs(t)

	opts := Options{
		ControlAddr: testsupport.FreeAddr(t),
		EventAddr:   testsupport.FreeAddr(t),
		Transport:   testOptions(kind),
	}
	svr := server.NewServer(opts.Transport)
	require.NoError(t, svr.Listen(opts.ControlAddr, opts.EventAddr))
	go func() { _ = svr.Serve() }()
	t.Cleanup(func() { _ = svr.Shutdown(3 * time.Second) })
	return &worker{Server: svr, opts: opts}
}

func dialWorker(t *testing.T, w *worker) *Session {
	t.Helper()
	s, err := Dial(w.opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func eachKind(t *testing.T, fn func(t *testing.T, kind string)) {
	for _, kind := range transport.Kinds() {
		t.Run(kind, func(t *testing.T) { fn(t, kind) })
	}
}

type fakeSupervisor struct {
	mu       sync.Mutex
	started  []string
	stops    int
	startErr error
}

func (f *fakeSupervisor) Start(path string, debug bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, path)
	return f.startErr
}

func (f *fakeSupervisor) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func TestIsLoginAgainstMockWorker(t *testing.T) {
	eachKind(t, func(t *testing.T, kind string) {
		w := startWorker(t, kind)
		w.Handle(message.FuncIsLogin, server.Status(1))
		s := dialWorker(t, w)

		ok, err := s.IsLogin(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestHangupBeforeReply(t *testing.T) {
	eachKind(t, func(t *testing.T, kind string) {
		w := startWorker(t, kind)
		w.Handle(message.FuncSendTxt, server.Hangup())
		w.Handle(message.FuncGetSelfWxid, server.Reply(message.Str("wxid_self")))
		s := dialWorker(t, w)
		ctx := context.Background()

		_, err := s.SendText(ctx, "hello", "filehelper")
		assert.ErrorIs(t, err, ErrCommunication)
		assert.ErrorIs(t, err, transport.ErrRecvFailed)

		// The session stays usable once the channel has reconnected.
		var wxid string
		require.Eventually(t, func() bool {
			wxid, err = s.SelfWxid(ctx)
			return err == nil
		}, 10*time.Second, 50*time.Millisecond)
		assert.Equal(t, "wxid_self", wxid)
	})
}

func TestRecvTimeout(t *testing.T) {
	testsupport.QuietLogs(t)

	addr := testsupport.FreeAddr(t)
	opts := transport.Options{Kind: transport.KindNNG, SendTimeout: time.Second, RecvTimeout: 300 * time.Millisecond}
	silent, err := transport.Listen(addr, opts)
	require.NoError(t, err)
	defer silent.Close()

	s, err := Dial(Options{ControlAddr: addr, EventAddr: testsupport.FreeAddr(t), Transport: opts})
	require.NoError(t, err)
	defer s.Close()

	start := time.Now()
	_, err = s.IsLogin(context.Background())
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, transport.ErrRecvFailed)
	assert.True(t, transport.IsTimeout(err))
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestLateReplyIsDiscarded(t *testing.T) {
	eachKind(t, func(t *testing.T, kind string) {
		w := startWorker(t, kind)
		w.Handle(message.FuncGetSelfWxid, func(*message.Request) (message.ResponsePayload, error) {
			time.Sleep(1500 * time.Millisecond)
			return message.Str("wxid_self"), nil
		})
		w.Handle(message.FuncIsLogin, server.Status(1))
		s := dialWorker(t, w)
		ctx := context.Background()

		_, err := s.SelfWxid(ctx)
		require.ErrorIs(t, err, transport.ErrRecvFailed)
		require.True(t, transport.IsTimeout(err))

		// The SelfWxid reply arrives first and must not answer IsLogin.
		ok, err := s.IsLogin(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestOnlyStaleRepliesTimeOut(t *testing.T) {
	testsupport.QuietLogs(t)

	addr := testsupport.FreeAddr(t)
	opts := transport.Options{Kind: transport.KindFrame, SendTimeout: time.Second, RecvTimeout: 300 * time.Millisecond}
	peer, err := transport.Listen(addr, opts)
	require.NoError(t, err)
	defer peer.Close()

	stale, err := (&codec.ProtobufCodec{}).Encode(&message.Response{Func: message.FuncGetSelfWxid, Payload: message.Str("late")})
	require.NoError(t, err)
	go func() {
		for {
			_, err := peer.Recv()
			if err == nil {
				break
			}
			if !transport.IsTimeout(err) {
				return
			}
		}
		for i := 0; i < 40; i++ {
			if peer.Send(stale) != nil {
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
	}()

	s, err := Dial(Options{ControlAddr: addr, Transport: opts})
	require.NoError(t, err)
	defer s.Close()

	start := time.Now()
	_, err = s.IsLogin(context.Background())
	assert.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, transport.ErrRecvFailed)
	assert.True(t, transport.IsTimeout(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUndecodableReply(t *testing.T) {
	testsupport.QuietLogs(t)

	addr := testsupport.FreeAddr(t)
	opts := testOptions(transport.KindFrame)
	peer, err := transport.Listen(addr, opts)
	require.NoError(t, err)
	defer peer.Close()

	go func() {
		if _, err := peer.Recv(); err == nil {
			_ = peer.Send([]byte{0x08, 0x80}) // truncated varint
		}
	}()

	s, err := Dial(Options{ControlAddr: addr, Transport: opts})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.IsLogin(context.Background())
	assert.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestDialUnreachable(t *testing.T) {
	testsupport.QuietLogs(t)

	_, err := Dial(Options{ControlAddr: testsupport.FreeAddr(t), Transport: testOptions(transport.KindNNG)})
	assert.ErrorIs(t, err, transport.ErrConnectFailed)
}

func TestInvokeCancelledContext(t *testing.T) {
	w := startWorker(t, transport.KindFrame)
	s := dialWorker(t, w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Invoke(ctx, message.FuncIsLogin, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.Received())
}

func TestUseMiddleware(t *testing.T) {
	w := startWorker(t, transport.KindFrame)
	w.Handle(message.FuncSendTxt, server.Status(0))
	w.Handle(message.FuncIsLogin, server.Status(1))
	s := dialWorker(t, w)
	s.Use(middleware.Logging(), middleware.RateLimit(0.001, 1))
	ctx := context.Background()

	ok, err := s.SendText(ctx, "first", "filehelper")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.SendText(ctx, "second", "filehelper")
	assert.ErrorIs(t, err, middleware.ErrRateLimited)

	ok, err = s.IsLogin(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// Subscription control is not subject to the limiter.
	_, err = s.EnableRecv(ctx)
	require.NoError(t, err)
	require.NoError(t, s.DisableRecv(ctx))

	assert.Equal(t, []message.Function{
		message.FuncSendTxt, message.FuncIsLogin, message.FuncEnableRecvTxt, message.FuncDisableRecvTxt,
	}, w.Received())
}

func TestOpenStartsAndStopsWorker(t *testing.T) {
	w := startWorker(t, transport.KindFrame)
	sup := &fakeSupervisor{}

	s, err := Open(w.opts, sup, `C:\wcf\wcf.exe`, true)
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\wcf\wcf.exe`}, sup.started)

	_, err = s.EnableRecv(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, sup.stops)
	assert.Equal(t, Unsubscribed, s.State())
	assert.Contains(t, w.Received(), message.FuncDisableRecvTxt)

	_, err = s.IsLogin(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestOpenFailures(t *testing.T) {
	testsupport.QuietLogs(t)

	sup := &fakeSupervisor{startErr: errors.New("injector missing")}
	_, err := Open(Options{}, sup, "wcf.exe", false)
	assert.ErrorContains(t, err, "injector missing")
	assert.Equal(t, 0, sup.stops)

	sup = &fakeSupervisor{}
	_, err = Open(Options{ControlAddr: testsupport.FreeAddr(t), Transport: testOptions(transport.KindFrame)}, sup, "wcf.exe", false)
	assert.ErrorIs(t, err, transport.ErrConnectFailed)
	assert.Equal(t, 1, sup.stops)
}

func TestOptionDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultControlAddr, o.ControlAddr)
	assert.Equal(t, DefaultEventAddr, o.EventAddr)
}
