// Package registry publishes and looks up worker endpoints, so a controller
// can find a worker by name instead of by fixed loopback ports.
package registry

import "context"

// Endpoint is one reachable worker.
type Endpoint struct {
	Name        string `json:"name" yaml:"name"`
	ControlAddr string `json:"control_addr" yaml:"control_addr"`
	EventAddr   string `json:"event_addr" yaml:"event_addr"`
	Transport   string `json:"transport,omitempty" yaml:"transport"`
}

type Registry interface {
	Register(ctx context.Context, ep Endpoint, ttl int64) error
	Deregister(ctx context.Context, ep Endpoint) error
	Discover(ctx context.Context, name string) ([]Endpoint, error)
	Watch(ctx context.Context, name string) <-chan []Endpoint
}
