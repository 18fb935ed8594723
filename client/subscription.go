package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"wcferry/codec"
	"wcferry/message"
	"wcferry/transport"
)

// State of a session's event subscription.
//
//	Unsubscribed ──EnableRecv──→ Subscribing ──dial ok──→ Subscribed
//	     ↑                            │                        │
//	     └──────── reject / dial fail ┘ ←──── DisableRecv ─────┘
type State int

const (
	Unsubscribed State = iota
	Subscribing
	Subscribed
)

func (s State) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// EnableRecv asks the worker to start pushing messages and dials the event
// address. A second call before DisableRecv fails with ErrAlreadySubscribed
// and leaves the first Subscription untouched.
func (s *Session) EnableRecv(ctx context.Context) (*Subscription, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state != Unsubscribed {
		s.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}
	s.state = Subscribing
	s.mu.Unlock()

	resp, err := s.roundTrip(ctx, message.FuncEnableRecvTxt, message.Flag(true))
	if err != nil {
		s.setState(Unsubscribed)
		return nil, fmt.Errorf("enable recv: %w", err)
	}
	if resp == nil {
		s.setState(Unsubscribed)
		return nil, ErrEnableRejected
	}

	ch, err := transport.Dial(s.opts.EventAddr, s.opts.Transport)
	if err != nil {
		// The worker is already pushing; tell it to stop.
		if _, rbErr := s.roundTrip(context.Background(), message.FuncDisableRecvTxt, nil); rbErr != nil {
			s.log.WithError(rbErr).Error("roll back enable recv")
		}
		s.setState(Unsubscribed)
		return nil, fmt.Errorf("enable recv: %w", err)
	}

	sub := &Subscription{
		addr:  s.opts.EventAddr,
		ch:    ch,
		codec: s.codec,
		log:   s.log.WithField("event_addr", s.opts.EventAddr),
		done:  make(chan struct{}),
	}
	s.mu.Lock()
	s.sub = sub
	s.state = Subscribed
	s.mu.Unlock()

	s.log.Info("event subscription enabled")
	return sub, nil
}

// DisableRecv stops the subscription. It is a no-op when none is active.
// The event channel is closed and the state reset even if the worker
// reports a failure.
func (s *Session) DisableRecv(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Subscribed {
		s.mu.Unlock()
		return nil
	}
	sub := s.sub
	s.mu.Unlock()

	resp, err := s.roundTrip(ctx, message.FuncDisableRecvTxt, nil)

	if closeErr := sub.close(); closeErr != nil {
		s.log.WithError(closeErr).Warn("close event channel")
	}
	s.mu.Lock()
	s.sub = nil
	s.state = Unsubscribed
	s.mu.Unlock()
	s.log.Info("event subscription disabled")

	switch {
	case err != nil:
		return fmt.Errorf("disable recv: %w", err)
	case resp == nil:
		return ErrDisableRejected
	}
	return nil
}

// Subscription is the event side of a session. It may be polled from a
// different goroutine than the one issuing commands.
type Subscription struct {
	addr  string
	ch    transport.Channel
	codec codec.Codec
	log   *logrus.Entry

	once sync.Once
	done chan struct{}
}

// Poll waits up to the receive timeout for one pushed message. Silence, a
// closed channel and envelopes that are not messages all yield (nil, nil);
// only bytes that fail to decode are an error.
func (sub *Subscription) Poll() (*message.WxMsg, error) {
	select {
	case <-sub.done:
		return nil, nil
	default:
	}

	data, err := sub.ch.Recv()
	if err != nil {
		if transport.IsTimeout(err) {
			sub.log.Debug("no event")
		} else {
			sub.log.WithError(err).Debug("event channel unavailable")
		}
		return nil, nil
	}

	resp := &message.Response{}
	if err := sub.codec.Decode(data, resp); err != nil {
		sub.log.WithError(err).Error("decode event")
		return nil, fmt.Errorf("poll: %w", err)
	}
	msg, ok := resp.Payload.(*message.WxMsg)
	if !ok {
		sub.log.WithField("func", resp.Func.String()).Debug("discarding non-message envelope")
		return nil, nil
	}
	return msg, nil
}

// Done is closed once the subscription has been disabled.
func (sub *Subscription) Done() <-chan struct{} {
	return sub.done
}

func (sub *Subscription) close() error {
	var err error
	sub.once.Do(func() {
		close(sub.done)
		err = sub.ch.Close()
	})
	return err
}
