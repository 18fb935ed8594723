package registry

import (
	"context"
	"sort"
	"sync"
)

// StaticRegistry keeps endpoints in memory. TTLs are ignored.
type StaticRegistry struct {
	mu       sync.Mutex
	eps      map[string]map[string]Endpoint // name → control addr → endpoint
	watchers map[string][]chan []Endpoint
}

func NewStaticRegistry(eps ...Endpoint) *StaticRegistry {
	r := &StaticRegistry{
		eps:      make(map[string]map[string]Endpoint),
		watchers: make(map[string][]chan []Endpoint),
	}
	for _, ep := range eps {
		r.put(ep)
	}
	return r
}

func (r *StaticRegistry) put(ep Endpoint) {
	byAddr, ok := r.eps[ep.Name]
	if !ok {
		byAddr = make(map[string]Endpoint)
		r.eps[ep.Name] = byAddr
	}
	byAddr[ep.ControlAddr] = ep
}

func (r *StaticRegistry) Register(ctx context.Context, ep Endpoint, ttl int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(ep)
	r.notify(ep.Name)
	return nil
}

func (r *StaticRegistry) Deregister(ctx context.Context, ep Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.eps[ep.Name], ep.ControlAddr)
	r.notify(ep.Name)
	return nil
}

func (r *StaticRegistry) Discover(ctx context.Context, name string) ([]Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(name), nil
}

// Watch emits the full list after every change until ctx is done. A slow
// reader only sees the latest list.
func (r *StaticRegistry) Watch(ctx context.Context, name string) <-chan []Endpoint {
	ch := make(chan []Endpoint, 1)

	r.mu.Lock()
	r.watchers[name] = append(r.watchers[name], ch)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		ws := r.watchers[name]
		for i, w := range ws {
			if w == ch {
				r.watchers[name] = append(ws[:i], ws[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

// list is sorted by control address so picks by a balancer are deterministic.
func (r *StaticRegistry) list(name string) []Endpoint {
	eps := make([]Endpoint, 0, len(r.eps[name]))
	for _, ep := range r.eps[name] {
		eps = append(eps, ep)
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].ControlAddr < eps[j].ControlAddr })
	return eps
}

func (r *StaticRegistry) notify(name string) {
	eps := r.list(name)
	for _, ch := range r.watchers[name] {
		select {
		case <-ch:
		default:
		}
		ch <- eps
	}
}
