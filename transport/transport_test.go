package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wcferry/internal/testsupport"
)

func shortOpts(kind string) Options {
	return Options{Kind: kind, SendTimeout: time.Second, RecvTimeout: time.Second}
}

// echo answers every request on peer with the same bytes until it is closed.
func echo(t *testing.T, peer PeerChannel) *sync.WaitGroup {
	t.Helper()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			data, err := peer.Recv()
			if err != nil {
				if IsTimeout(err) {
					continue
				}
				return
			}
			_ = peer.Send(data)
		}
	}()
	return &wg
}

func TestDialUnreachable(t *testing.T) {
	testsupport.QuietLogs(t)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			_, err := Dial(testsupport.FreeAddr(t), shortOpts(kind))
			assert.ErrorIs(t, err, ErrConnectFailed)
		})
	}
}

func TestUnknownKind(t *testing.T) {
	testsupport.QuietLogs(t)

	_, err := Dial("tcp://127.0.0.1:1", Options{Kind: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrConnectFailed)

	_, err = Listen("tcp://127.0.0.1:1", Options{Kind: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrConnectFailed)
}

func TestOptionDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, KindNNG, o.Kind)
	assert.Equal(t, DefaultTimeout, o.SendTimeout)
	assert.Equal(t, DefaultTimeout, o.RecvTimeout)

	o = Options{Kind: KindFrame, RecvTimeout: time.Second}.withDefaults()
	assert.Equal(t, KindFrame, o.Kind)
	assert.Equal(t, time.Second, o.RecvTimeout)
}

func TestCallRoundTrip(t *testing.T) {
	testsupport.QuietLogs(t)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			addr := testsupport.FreeAddr(t)
			peer, err := Listen(addr, shortOpts(kind))
			require.NoError(t, err)
			wg := echo(t, peer)

			ch, err := Dial(addr, shortOpts(kind))
			require.NoError(t, err)

			for _, body := range [][]byte{{0x08, 0x01}, []byte("second"), make([]byte, 64<<10)} {
				got, err := Call(ch, body)
				require.NoError(t, err)
				assert.Equal(t, body, got)
			}

			require.NoError(t, ch.Close())
			require.NoError(t, peer.Close())
			wg.Wait()
		})
	}
}

func TestRecvTimeout(t *testing.T) {
	testsupport.QuietLogs(t)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			addr := testsupport.FreeAddr(t)
			peer, err := Listen(addr, shortOpts(kind))
			require.NoError(t, err)
			defer peer.Close()

			opts := Options{Kind: kind, SendTimeout: time.Second, RecvTimeout: 200 * time.Millisecond}
			ch, err := Dial(addr, opts)
			require.NoError(t, err)
			defer ch.Close()

			start := time.Now()
			_, err = ch.Recv()
			elapsed := time.Since(start)

			assert.ErrorIs(t, err, ErrRecvFailed)
			assert.True(t, IsTimeout(err))
			assert.Less(t, elapsed, 2*time.Second)
		})
	}
}

func TestHangupThenRecover(t *testing.T) {
	testsupport.QuietLogs(t)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			addr := testsupport.FreeAddr(t)
			peer, err := Listen(addr, shortOpts(kind))
			require.NoError(t, err)
			defer peer.Close()

			ch, err := Dial(addr, shortOpts(kind))
			require.NoError(t, err)
			defer ch.Close()

			require.NoError(t, ch.Send([]byte("drop me")))
			_, err = peer.Recv()
			require.NoError(t, err)
			require.NoError(t, peer.Hangup())

			_, err = ch.Recv()
			require.Error(t, err)

			// The channel reconnects on its own; a later exchange succeeds.
			wg := echo(t, peer)
			var got []byte
			require.Eventually(t, func() bool {
				got, err = Call(ch, []byte("again"))
				return err == nil
			}, 10*time.Second, 50*time.Millisecond)
			assert.Equal(t, []byte("again"), got)

			require.NoError(t, peer.Close())
			wg.Wait()
		})
	}
}

func TestClosedChannel(t *testing.T) {
	testsupport.QuietLogs(t)

	addr := testsupport.FreeAddr(t)
	peer, err := Listen(addr, shortOpts(KindFrame))
	require.NoError(t, err)
	defer peer.Close()

	ch, err := Dial(addr, shortOpts(KindFrame))
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	err = ch.Send([]byte("late"))
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ch.Recv()
	assert.ErrorIs(t, err, ErrRecvFailed)
}

func TestTrimScheme(t *testing.T) {
	assert.Equal(t, "127.0.0.1:10086", trimScheme("tcp://127.0.0.1:10086"))
	assert.Equal(t, "127.0.0.1:10086", trimScheme("127.0.0.1:10086"))
}
