package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"wcferry/client"
	"wcferry/config"
	"wcferry/loadbalance"
	"wcferry/logging"
	"wcferry/middleware"
	"wcferry/registry"
	"wcferry/supervisor"
)

type commandContext struct {
	configFlag   *string
	endpointFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, endpointFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		endpointFlag: endpointFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg := config.Default()
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			loaded, err := config.LoadConfig(path)
			if err != nil {
				c.configErr = err
				return
			}
			cfg = loaded
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("invalid config: %w", err)
			return
		}
		if err := logging.Init(cfg.Log); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) wantJSON() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) endpointName() string {
	if name := strings.TrimSpace(*c.endpointFlag); name != "" {
		return name
	}
	return c.config.Registry.Name
}

// etcdRegistry returns the etcd registry when one is configured, or nil.
func (c *commandContext) etcdRegistry() (*registry.EtcdRegistry, error) {
	if len(c.config.Registry.Endpoints) == 0 {
		return nil, nil
	}
	reg, err := registry.NewEtcdRegistry(c.config.Registry.Endpoints, c.config.RegistryDialTimeout())
	if err != nil {
		return nil, fmt.Errorf("connect to registry: %w", err)
	}
	return reg, nil
}

// registry returns the registry used to look workers up: etcd when
// configured, else the static list, else nil. release frees it.
func (c *commandContext) registry() (reg registry.Registry, release func(), err error) {
	release = func() {}
	etcd, err := c.etcdRegistry()
	if err != nil {
		return nil, release, err
	}
	if etcd != nil {
		return etcd, func() { _ = etcd.Close() }, nil
	}
	if static := c.config.Registry.Static; len(static) > 0 {
		return registry.NewStaticRegistry(static...), release, nil
	}
	return nil, release, nil
}

// clientOptions resolves the worker's addresses, through the registry when
// one is configured.
func (c *commandContext) clientOptions(ctx context.Context) (client.Options, error) {
	opts := c.config.ClientOptions()
	reg, release, err := c.registry()
	if err != nil || reg == nil {
		return opts, err
	}
	defer release()

	bal, err := c.config.Balancer()
	if err != nil {
		return opts, err
	}
	ep, err := loadbalance.Resolve(ctx, reg, c.endpointName(), bal)
	if err != nil {
		return opts, err
	}
	opts.ControlAddr = ep.ControlAddr
	opts.EventAddr = ep.EventAddr
	if ep.Transport != "" {
		opts.Transport.Kind = ep.Transport
	}
	return opts, nil
}

func (c *commandContext) supervisor() *supervisor.Exec {
	w := c.config.Worker
	return supervisor.NewExec(
		supervisor.WithPath(w.Path),
		supervisor.WithPort(w.Port),
		supervisor.WithLockFile(w.LockFile),
	)
}

// openSession dials the worker, starting it first when the config manages it.
func (c *commandContext) openSession(ctx context.Context) (*client.Session, error) {
	opts, err := c.clientOptions(ctx)
	if err != nil {
		return nil, err
	}

	var s *client.Session
	if c.config.Worker.Managed {
		s, err = client.Open(opts, c.supervisor(), c.config.Worker.Path, c.config.Worker.Debug)
	} else {
		s, err = client.Dial(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to worker at %s: %w", opts.ControlAddr, err)
	}

	mws := []middleware.Middleware{middleware.Logging()}
	if rl := c.config.RateLimit; rl.PerSecond > 0 {
		mws = append(mws, middleware.RateLimit(rl.PerSecond, rl.Burst))
	}
	if c.config.Retry.MaxRetries > 0 {
		mws = append(mws, middleware.Retry(c.config.Retry.MaxRetries, c.config.RetryBaseDelay()))
	}
	s.Use(mws...)
	return s, nil
}

func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *client.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
