package loadbalance

import (
	"sync/atomic"

	"wcferry/registry"
)

// RoundRobinBalancer hands out endpoints in turn.
type RoundRobinBalancer struct {
	counter atomic.Uint64
}

// Pick returns the next endpoint. The list is taken in the order given, so
// callers should pass a stably ordered list (Discover sorts by address).
func (b *RoundRobinBalancer) Pick(eps []registry.Endpoint) (registry.Endpoint, error) {
	if len(eps) == 0 {
		return registry.Endpoint{}, ErrNoEndpoints
	}
	n := b.counter.Add(1) - 1
	return eps[n%uint64(len(eps))], nil
}

func (b *RoundRobinBalancer) Name() string {
	return StrategyRoundRobin
}
