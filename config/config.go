package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"wcferry/client"
	"wcferry/loadbalance"
	"wcferry/logging"
	"wcferry/registry"
	"wcferry/transport"
)

// Config is the controller configuration.
type Config struct {
	Worker    WorkerConfig    `yaml:"worker"`
	Transport TransportConfig `yaml:"transport"`
	Registry  RegistryConfig  `yaml:"registry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
	Log       logging.Config  `yaml:"log"`
}

// WorkerConfig describes the worker executable. When Managed is false the
// controller only dials an already running worker.
type WorkerConfig struct {
	Path     string `yaml:"path"`      // e.g. "./lib/wcf.exe"
	Debug    bool   `yaml:"debug"`     // pass "debug" to the worker
	Port     int    `yaml:"port"`      // control port; events use port+1
	Managed  bool   `yaml:"managed"`   // start/stop the worker with the session
	LockFile string `yaml:"lock_file"` // single-controller lock, empty disables
}

type TransportConfig struct {
	Kind          string `yaml:"kind"`         // nng | frame
	ControlAddr   string `yaml:"control_addr"` // e.g. "tcp://127.0.0.1:10086"
	EventAddr     string `yaml:"event_addr"`   // e.g. "tcp://127.0.0.1:10087"
	SendTimeoutMs int    `yaml:"send_timeout_ms"`
	RecvTimeoutMs int    `yaml:"recv_timeout_ms"`
}

// RegistryConfig locates workers by name. Endpoints points at etcd; without
// it the Static list is used; with neither, addresses come from the
// transport section.
//
// Strategy picks among several workers sharing a name. wcfctl resolves once
// per invocation with a fresh balancer, so round_robin only spreads the
// sessions of one long-running process; each wcfctl run starts from the
// first endpoint. Use hash to spread separate runs by key.
type RegistryConfig struct {
	Endpoints   []string            `yaml:"endpoints"`
	Static      []registry.Endpoint `yaml:"static"` // used when Endpoints is empty
	Name        string              `yaml:"name"`        // worker name to resolve or advertise
	TTLSeconds  int64               `yaml:"ttl_seconds"` // lease TTL when advertising
	DialTimeout int                 `yaml:"dial_timeout_ms"`
	Strategy    string              `yaml:"strategy"` // first | round_robin | hash
	HashKey     string              `yaml:"hash_key"` // key pinned to one worker by hash
}

// RateLimitConfig throttles calls with side effects. Zero disables it.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// RetryConfig retries read-only calls on transport failure. Zero disables it.
type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMs int `yaml:"base_delay_ms"`
}

func (c *Config) ClientOptions() client.Options {
	return client.Options{
		ControlAddr: c.Transport.ControlAddr,
		EventAddr:   c.Transport.EventAddr,
		Transport: transport.Options{
			Kind:        c.Transport.Kind,
			SendTimeout: time.Duration(c.Transport.SendTimeoutMs) * time.Millisecond,
			RecvTimeout: time.Duration(c.Transport.RecvTimeoutMs) * time.Millisecond,
		},
	}
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMs) * time.Millisecond
}

func (c *Config) RegistryDialTimeout() time.Duration {
	return time.Duration(c.Registry.DialTimeout) * time.Millisecond
}

// Balancer returns the strategy used when several workers share a name.
func (c *Config) Balancer() (loadbalance.Balancer, error) {
	return loadbalance.New(c.Registry.Strategy, c.Registry.HashKey)
}

func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(transport.Kinds(), c.Transport.Kind) {
		errs = append(errs, fmt.Errorf("transport.kind %q must be one of %v", c.Transport.Kind, transport.Kinds()))
	}
	if c.Transport.SendTimeoutMs < 0 || c.Transport.RecvTimeoutMs < 0 {
		errs = append(errs, errors.New("transport timeouts must not be negative"))
	}
	if c.Worker.Port <= 0 || c.Worker.Port > 65534 {
		errs = append(errs, fmt.Errorf("worker.port %d out of range", c.Worker.Port))
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	if c.Retry.MaxRetries < 0 || c.Retry.BaseDelayMs < 0 {
		errs = append(errs, errors.New("retry values must not be negative"))
	}
	if len(c.Registry.Endpoints) > 0 && c.Registry.Name == "" {
		errs = append(errs, errors.New("registry.name is required with registry.endpoints"))
	}
	for i, ep := range c.Registry.Static {
		if ep.ControlAddr == "" {
			errs = append(errs, fmt.Errorf("registry.static[%d]: control_addr is required", i))
		}
		if ep.Transport != "" && !slices.Contains(transport.Kinds(), ep.Transport) {
			errs = append(errs, fmt.Errorf("registry.static[%d]: unknown transport %q", i, ep.Transport))
		}
	}
	if _, err := c.Balancer(); err != nil {
		errs = append(errs, fmt.Errorf("registry: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}
