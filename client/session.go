// Package client drives a wcferry worker over its control channel.
//
// A Session owns one control Channel and, while events are enabled, one
// Subscription on the event address. Every operation is a single blocking
// round trip:
//
//	op(args) → Invoke(fn, payload) → encode → transport.Call → decode → match func → narrow
//
// Narrowing is lenient: a reply whose variant does not match what the
// operation expects becomes the zero value (false, "", nil, empty map)
// instead of an error. Callers that care about protocol drift must look at
// Invoke's raw payload.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wcferry/codec"
	"wcferry/message"
	"wcferry/middleware"
	"wcferry/transport"
)

type Session struct {
	id     string
	opts   Options
	codec  codec.Codec
	sup    ProcessSupervisor
	log    *logrus.Entry
	ctrl   transport.Channel
	callMu sync.Mutex // one exchange at a time on ctrl

	invoke middleware.Invoker

	mu     sync.Mutex
	state  State
	sub    *Subscription
	closed bool
}

// Open starts the worker through sup and dials its control address. A nil
// sup dials an already running worker.
func Open(opts Options, sup ProcessSupervisor, workerPath string, debug bool) (*Session, error) {
	if sup != nil {
		if err := sup.Start(workerPath, debug); err != nil {
			return nil, fmt.Errorf("start worker: %w", err)
		}
	}
	s, err := Dial(opts)
	if err != nil {
		if sup != nil {
			if stopErr := sup.Stop(); stopErr != nil {
				logrus.WithError(stopErr).Warn("stop worker after failed dial")
			}
		}
		return nil, err
	}
	s.sup = sup
	return s, nil
}

// Dial connects to a running worker.
func Dial(opts Options) (*Session, error) {
	opts = opts.withDefaults()
	ch, err := transport.Dial(opts.ControlAddr, opts.Transport)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		id:    id,
		opts:  opts,
		codec: &codec.ProtobufCodec{},
		ctrl:  ch,
		log: logrus.WithFields(logrus.Fields{
			"session": id,
			"addr":    opts.ControlAddr,
		}),
	}
	s.invoke = s.roundTrip
	s.log.Info("session opened")
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Use wraps the dispatcher with mw. Subscription control calls bypass it.
func (s *Session) Use(mw ...middleware.Middleware) {
	s.invoke = middleware.Chain(mw...)(s.invoke)
}

// Invoke sends fn with payload and returns the reply's payload, or nil when
// the worker sent none. Any transport or codec failure is ErrCommunication.
func (s *Session) Invoke(ctx context.Context, fn message.Function, payload message.RequestPayload) (message.ResponsePayload, error) {
	return s.invoke(ctx, fn, payload)
}

// roundTrip is the bare dispatcher. ctx is only consulted before sending;
// once on the wire the exchange runs to completion or to its timeout.
func (s *Session) roundTrip(ctx context.Context, fn message.Function, payload message.RequestPayload) (message.ResponsePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}

	log := s.log.WithField("func", fn.String())

	req, err := s.codec.Encode(&message.Request{Func: fn, Payload: payload})
	if err != nil {
		log.WithError(err).Error("encode request")
		return nil, fmt.Errorf("%w: %w: %w", ErrCommunication, ErrSerializationFailed, err)
	}

	s.callMu.Lock()
	resp, err := s.exchange(log, fn, req)
	s.callMu.Unlock()
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// exchange sends req and returns the reply echoing fn. Replies to other
// functions are late answers to calls that already timed out; they are
// dropped and the receive repeats until the receive timeout has passed.
func (s *Session) exchange(log *logrus.Entry, fn message.Function, req []byte) (*message.Response, error) {
	deadline := time.Now().Add(s.opts.Transport.RecvTimeout)
	reply, err := transport.Call(s.ctrl, req)
	for {
		if err != nil {
			log.WithError(err).Warn("round trip failed")
			return nil, fmt.Errorf("%w: %w", ErrCommunication, err)
		}

		resp := &message.Response{}
		if err := s.codec.Decode(reply, resp); err != nil {
			log.WithError(err).Error("decode response")
			return nil, fmt.Errorf("%w: %w: %w", ErrCommunication, ErrSerializationFailed, err)
		}
		if resp.Func == fn {
			return resp, nil
		}

		log.WithField("reply_func", resp.Func.String()).Warn("discarding stale reply")
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %w: %w: only stale replies received", ErrCommunication, transport.ErrRecvFailed, transport.ErrTimeout)
		}
		reply, err = s.ctrl.Recv()
	}
}

// Close disables events, closes the control channel and stops the worker if
// this session started it. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.DisableRecv(context.Background()); err != nil {
		s.log.WithError(err).Warn("disable events on close")
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.ctrl.Close()
	if s.sup != nil {
		if stopErr := s.sup.Stop(); stopErr != nil {
			s.log.WithError(stopErr).Error("stop worker")
			if err == nil {
				err = stopErr
			}
		}
	}
	s.log.Info("session closed")
	return err
}
