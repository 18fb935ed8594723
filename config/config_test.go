package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wcferry/registry"
	"wcferry/supervisor"
	"wcferry/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wcferry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, supervisor.DefaultPath(), cfg.Worker.Path)
	assert.Equal(t, 10086, cfg.Worker.Port)
	assert.Equal(t, transport.KindNNG, cfg.Transport.Kind)
	assert.Equal(t, "tcp://127.0.0.1:10086", cfg.Transport.ControlAddr)
	assert.Equal(t, "tcp://127.0.0.1:10087", cfg.Transport.EventAddr)
	assert.Equal(t, 5000, cfg.Transport.RecvTimeoutMs)
	assert.Equal(t, "info", cfg.Log.Level)

	opts := cfg.ClientOptions()
	assert.Equal(t, 5*time.Second, opts.Transport.SendTimeout)
	assert.Equal(t, 5*time.Second, opts.Transport.RecvTimeout)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
worker:
  path: C:\wcf\wcf.exe
  port: 20086
  debug: true
  managed: true
  lock_file: /tmp/wcf.lock
transport:
  kind: frame
  recv_timeout_ms: 1500
registry:
  endpoints: ["127.0.0.1:2379"]
  name: office
rate_limit:
  per_second: 2
retry:
  max_retries: 3
log:
  level: debug
  format: json
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, `C:\wcf\wcf.exe`, cfg.Worker.Path)
	assert.True(t, cfg.Worker.Managed)
	assert.Equal(t, "tcp://127.0.0.1:20086", cfg.Transport.ControlAddr)
	assert.Equal(t, "tcp://127.0.0.1:20087", cfg.Transport.EventAddr)
	assert.Equal(t, 5000, cfg.Transport.SendTimeoutMs)
	assert.Equal(t, 1500*time.Millisecond, cfg.ClientOptions().Transport.RecvTimeout)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBaseDelay())
	assert.Equal(t, int64(10), cfg.Registry.TTLSeconds)
	assert.Equal(t, 3*time.Second, cfg.RegistryDialTimeout())
	assert.Equal(t, "first", cfg.Registry.Strategy)
}

func TestLoadStaticRegistry(t *testing.T) {
	path := writeConfig(t, `
registry:
  name: office
  strategy: hash
  hash_key: wxid_bot
  static:
    - control_addr: tcp://10.0.0.1:10086
      event_addr: tcp://10.0.0.1:10087
    - name: lab
      control_addr: tcp://10.0.0.2:10086
      event_addr: tcp://10.0.0.2:10087
      transport: frame
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []registry.Endpoint{
		{Name: "office", ControlAddr: "tcp://10.0.0.1:10086", EventAddr: "tcp://10.0.0.1:10087"},
		{Name: "lab", ControlAddr: "tcp://10.0.0.2:10086", EventAddr: "tcp://10.0.0.2:10087", Transport: "frame"},
	}, cfg.Registry.Static)

	b, err := cfg.Balancer()
	require.NoError(t, err)
	assert.Equal(t, "hash", b.Name())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "worker: [not, a, map]"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "wrker:\n  port: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown kind":     func(c *Config) { c.Transport.Kind = "zmq" },
		"negative timeout": func(c *Config) { c.Transport.RecvTimeoutMs = -1 },
		"port range":       func(c *Config) { c.Worker.Port = 70000 },
		"negative rate":    func(c *Config) { c.RateLimit.PerSecond = -1 },
		"negative retry":   func(c *Config) { c.Retry.MaxRetries = -2 },
		"registry name":    func(c *Config) { c.Registry.Endpoints = []string{"x:2379"}; c.Registry.Name = "" },
		"log format":       func(c *Config) { c.Log.Format = "xml" },
		"strategy":         func(c *Config) { c.Registry.Strategy = "random" },
		"hash without key": func(c *Config) { c.Registry.Strategy = "hash" },
		"static no addr":   func(c *Config) { c.Registry.Static = []registry.Endpoint{{Name: "x"}} },
		"static transport": func(c *Config) { c.Registry.Static = []registry.Endpoint{{ControlAddr: "tcp://a:1", Transport: "zmq"}} },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
