package client

import "wcferry/transport"

const (
	DefaultControlAddr = "tcp://127.0.0.1:10086"
	DefaultEventAddr   = "tcp://127.0.0.1:10087"
)

// Options locate the worker's two endpoints.
type Options struct {
	ControlAddr string
	EventAddr   string
	Transport   transport.Options
}

func (o Options) withDefaults() Options {
	if o.ControlAddr == "" {
		o.ControlAddr = DefaultControlAddr
	}
	if o.EventAddr == "" {
		o.EventAddr = DefaultEventAddr
	}
	if o.Transport.RecvTimeout <= 0 {
		o.Transport.RecvTimeout = transport.DefaultTimeout
	}
	return o
}

// ProcessSupervisor starts and stops the external worker process. The
// session only needs the control address to be reachable once Start returns.
type ProcessSupervisor interface {
	Start(path string, debug bool) error
	Stop() error
}
