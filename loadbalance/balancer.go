// Package loadbalance chooses one worker when several are registered under
// the same name.
//
// Strategies:
//   - first:       the lowest control address, stable across controllers
//   - round_robin: spread successive sessions over all workers
//   - hash:        pin a key (an account, a bot name) to one worker
package loadbalance

import (
	"context"
	"errors"
	"fmt"

	"wcferry/registry"
)

const (
	StrategyFirst      = "first"
	StrategyRoundRobin = "round_robin"
	StrategyHash       = "hash"
)

var ErrNoEndpoints = errors.New("loadbalance: no endpoints available")

// Balancer picks one endpoint. Implementations must be goroutine-safe.
type Balancer interface {
	Pick(eps []registry.Endpoint) (registry.Endpoint, error)
	Name() string
}

// New returns the balancer for strategy. key is only used by hash.
func New(strategy, key string) (Balancer, error) {
	switch strategy {
	case "", StrategyFirst:
		return First{}, nil
	case StrategyRoundRobin:
		return &RoundRobinBalancer{}, nil
	case StrategyHash:
		if key == "" {
			return nil, fmt.Errorf("loadbalance: %s strategy needs a key", StrategyHash)
		}
		return NewConsistentHashBalancer(key), nil
	}
	return nil, fmt.Errorf("loadbalance: unknown strategy %q", strategy)
}

// Resolve discovers the endpoints registered under name and picks one.
func Resolve(ctx context.Context, reg registry.Registry, name string, b Balancer) (registry.Endpoint, error) {
	eps, err := reg.Discover(ctx, name)
	if err != nil {
		return registry.Endpoint{}, fmt.Errorf("discover %s: %w", name, err)
	}
	ep, err := b.Pick(eps)
	if err != nil {
		return registry.Endpoint{}, fmt.Errorf("%w: %s", err, name)
	}
	return ep, nil
}

// First picks the endpoint with the lowest control address.
type First struct{}

func (First) Pick(eps []registry.Endpoint) (registry.Endpoint, error) {
	if len(eps) == 0 {
		return registry.Endpoint{}, ErrNoEndpoints
	}
	best := eps[0]
	for _, ep := range eps[1:] {
		if ep.ControlAddr < best.ControlAddr {
			best = ep
		}
	}
	return best, nil
}

func (First) Name() string {
	return StrategyFirst
}
