package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"wcferry/loadbalance"
	"wcferry/supervisor"
	"wcferry/transport"
)

// LoadConfig reads file and applies defaults.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// Default is the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.Worker.Path == "" {
		cfg.Worker.Path = supervisor.DefaultPath()
	}
	if cfg.Worker.Port == 0 {
		cfg.Worker.Port = supervisor.DefaultPort
	}

	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = transport.KindNNG
	}
	// Worker listens on port and port+1.
	if cfg.Transport.ControlAddr == "" {
		cfg.Transport.ControlAddr = fmt.Sprintf("tcp://127.0.0.1:%d", cfg.Worker.Port)
	}
	if cfg.Transport.EventAddr == "" {
		cfg.Transport.EventAddr = fmt.Sprintf("tcp://127.0.0.1:%d", cfg.Worker.Port+1)
	}
	if cfg.Transport.SendTimeoutMs == 0 {
		cfg.Transport.SendTimeoutMs = int(transport.DefaultTimeout.Milliseconds())
	}
	if cfg.Transport.RecvTimeoutMs == 0 {
		cfg.Transport.RecvTimeoutMs = int(transport.DefaultTimeout.Milliseconds())
	}

	if cfg.Registry.Name == "" {
		cfg.Registry.Name = "default"
	}
	if cfg.Registry.TTLSeconds == 0 {
		cfg.Registry.TTLSeconds = 10
	}
	if cfg.Registry.DialTimeout == 0 {
		cfg.Registry.DialTimeout = 3000
	}
	for i := range cfg.Registry.Static {
		if cfg.Registry.Static[i].Name == "" {
			cfg.Registry.Static[i].Name = cfg.Registry.Name
		}
	}
	if cfg.Registry.Strategy == "" {
		cfg.Registry.Strategy = loadbalance.StrategyFirst
	}

	if cfg.RateLimit.PerSecond > 0 && cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 1
	}
	if cfg.Retry.MaxRetries > 0 && cfg.Retry.BaseDelayMs == 0 {
		cfg.Retry.BaseDelayMs = 200
	}

	cfg.Log.ApplyDefaults()
}
