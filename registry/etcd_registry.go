package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdRegistry stores endpoints in etcd under
//
//	/wcferry/{name}/{controlAddr} → JSON Endpoint
//
// Entries are attached to a TTL lease kept alive for as long as the
// registering process runs, so a crashed worker host drops out on its own.
type EtcdRegistry struct {
	client *clientv3.Client
}

func NewEtcdRegistry(endpoints []string, dialTimeout time.Duration) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

func (r *EtcdRegistry) Close() error {
	return r.client.Close()
}

func prefix(name string) string {
	return "/wcferry/" + name + "/"
}

func key(ep Endpoint) string {
	return prefix(ep.Name) + ep.ControlAddr
}

// Register puts ep under a lease of ttl seconds and renews it in the
// background. The lease id stays local so one registry can serve many
// endpoints.
func (r *EtcdRegistry) Register(ctx context.Context, ep Endpoint, ttl int64) error {
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	if _, err := r.client.Put(ctx, key(ep), string(val), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}

	// KeepAlive must outlive the registering call.
	ch, err := r.client.KeepAlive(context.Background(), lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
		logrus.WithField("key", key(ep)).Debug("lease keepalive stopped")
	}()
	return nil
}

func (r *EtcdRegistry) Deregister(ctx context.Context, ep Endpoint) error {
	_, err := r.client.Delete(ctx, key(ep))
	return err
}

func (r *EtcdRegistry) Discover(ctx context.Context, name string) ([]Endpoint, error) {
	resp, err := r.client.Get(ctx, prefix(name), clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	eps := make([]Endpoint, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var ep Endpoint
		if err := json.Unmarshal(kv.Value, &ep); err != nil {
			logrus.WithField("key", string(kv.Key)).WithError(err).Warn("skipping malformed endpoint")
			continue
		}
		eps = append(eps, ep)
	}
	return eps, nil
}

// Watch re-reads the full list on every change under name until ctx is done.
func (r *EtcdRegistry) Watch(ctx context.Context, name string) <-chan []Endpoint {
	ch := make(chan []Endpoint, 1)

	go func() {
		defer close(ch)
		for range r.client.Watch(ctx, prefix(name), clientv3.WithPrefix()) {
			eps, err := r.Discover(ctx, name)
			if err != nil {
				logrus.WithField("name", name).WithError(err).Warn("rediscover after watch event")
				continue
			}
			select {
			case ch <- eps:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
