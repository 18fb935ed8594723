// Package server is an in-process stand-in for the wcferry worker. It speaks
// the same envelopes over the same transports, so the client can be
// exercised without the real worker.
//
// Request processing:
//
//	control Recv → Codec.Decode → handler → Codec.Encode → control Send
//
// Exchanges are handled one at a time, as on a pair socket. Enabling events
// opens a listener on the event address; Push sends envelopes through it.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"wcferry/codec"
	"wcferry/message"
	"wcferry/registry"
	"wcferry/transport"
)

var ErrEventsDisabled = errors.New("server: events not enabled")

type Server struct {
	opts     transport.Options
	codec    codec.Codec
	handlers *handlerTable
	log      *logrus.Entry

	ctrl        transport.PeerChannel
	controlAddr string
	eventAddr   string

	evMu   sync.Mutex
	events transport.PeerChannel // nil while events are disabled

	recMu    sync.Mutex
	received []message.Function

	done     chan struct{}
	serving  atomic.Bool
	shutdown atomic.Bool

	registry registry.Registry
	endpoint registry.Endpoint
}

func NewServer(opts transport.Options) *Server {
	s := &Server{
		opts:     opts,
		codec:    &codec.ProtobufCodec{},
		handlers: newHandlerTable(),
		log:      logrus.WithField("component", "mock-worker"),
		done:     make(chan struct{}),
	}
	s.handlers.set(message.FuncEnableRecvTxt, s.enableEvents)
	s.handlers.set(message.FuncDisableRecvTxt, s.disableEvents)
	return s
}

// Handle installs h for fn, replacing any earlier handler including the
// built-in event handlers.
func (s *Server) Handle(fn message.Function, h HandlerFunc) {
	s.handlers.set(fn, h)
}

// Listen binds the control address. The event address is only bound once a
// client enables events.
func (s *Server) Listen(controlAddr, eventAddr string) error {
	ctrl, err := transport.Listen(controlAddr, s.opts)
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	s.controlAddr = controlAddr
	s.eventAddr = eventAddr
	s.log = s.log.WithField("addr", controlAddr)
	s.log.Info("mock worker listening")
	return nil
}

// Serve handles requests until Shutdown. It returns nil after a shutdown.
func (s *Server) Serve() error {
	s.serving.Store(true)
	defer close(s.done)
	for {
		data, err := s.ctrl.Recv()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			if !transport.IsTimeout(err) {
				s.log.WithError(err).Debug("control recv")
			}
			continue
		}
		s.handle(data)
	}
}

func (s *Server) handle(data []byte) {
	req := &message.Request{}
	if err := s.codec.Decode(data, req); err != nil {
		s.log.WithError(err).Warn("dropping undecodable request")
		return
	}
	s.record(req.Func)
	log := s.log.WithField("func", req.Func.String())

	var payload message.ResponsePayload
	if h := s.handlers.get(req.Func); h != nil {
		p, err := h(req)
		switch {
		case errors.Is(err, ErrHangup):
			log.Info("hanging up on client")
			if err := s.ctrl.Hangup(); err != nil {
				log.WithError(err).Warn("hang up")
			}
			return
		case err != nil:
			log.WithError(err).Warn("handler failed, replying empty")
		default:
			payload = p
		}
	} else {
		log.Debug("no handler, replying empty")
	}

	reply, err := s.codec.Encode(&message.Response{Func: req.Func, Payload: payload})
	if err != nil {
		log.WithError(err).Error("encode reply")
		return
	}
	if err := s.ctrl.Send(reply); err != nil {
		log.WithError(err).Warn("send reply")
	}
}

func (s *Server) record(fn message.Function) {
	s.recMu.Lock()
	s.received = append(s.received, fn)
	s.recMu.Unlock()
}

// Received lists the functions of every decoded request, in arrival order.
func (s *Server) Received() []message.Function {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	return append([]message.Function(nil), s.received...)
}

func (s *Server) enableEvents(*message.Request) (message.ResponsePayload, error) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.events == nil {
		ev, err := transport.Listen(s.eventAddr, s.opts)
		if err != nil {
			return nil, fmt.Errorf("listen events: %w", err)
		}
		s.events = ev
		s.log.WithField("event_addr", s.eventAddr).Info("events enabled")
	}
	return message.Status(0), nil
}

func (s *Server) disableEvents(*message.Request) (message.ResponsePayload, error) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			s.log.WithError(err).Warn("close event listener")
		}
		s.events = nil
		s.log.Info("events disabled")
	}
	return message.Status(0), nil
}

// Push sends msg as a pushed message event.
func (s *Server) Push(msg *message.WxMsg) error {
	return s.PushResponse(&message.Response{Func: message.FuncEnableRecvTxt, Payload: msg})
}

// PushResponse sends any envelope on the event channel.
func (s *Server) PushResponse(resp *message.Response) error {
	data, err := s.codec.Encode(resp)
	if err != nil {
		return err
	}
	return s.PushRaw(data)
}

// PushRaw sends bytes on the event channel unchanged.
func (s *Server) PushRaw(data []byte) error {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.events == nil {
		return ErrEventsDisabled
	}
	return s.events.Send(data)
}

// Advertise registers this worker's addresses under name.
func (s *Server) Advertise(ctx context.Context, reg registry.Registry, name string, ttl int64) error {
	ep := registry.Endpoint{
		Name:        name,
		ControlAddr: s.controlAddr,
		EventAddr:   s.eventAddr,
		Transport:   s.opts.Kind,
	}
	if err := reg.Register(ctx, ep, ttl); err != nil {
		return fmt.Errorf("advertise %s: %w", name, err)
	}
	s.registry = reg
	s.endpoint = ep
	return nil
}

// Shutdown deregisters first so no new controller finds this worker, then
// closes both listeners and waits up to timeout for Serve to return.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.registry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := s.registry.Deregister(ctx, s.endpoint); err != nil {
			s.log.WithError(err).Warn("deregister")
		}
		cancel()
	}

	// Flag before closing so Serve treats the close as intentional.
	s.shutdown.Store(true)
	if s.ctrl != nil {
		_ = s.ctrl.Close()
	}
	s.evMu.Lock()
	if s.events != nil {
		_ = s.events.Close()
		s.events = nil
	}
	s.evMu.Unlock()

	if !s.serving.Load() {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for serve loop to stop")
	}
}
