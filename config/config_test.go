package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/oscbridge/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
iteration_interval: 10ms
log_level: debug
isolate_handlers: true
receivers: [8000, 8001]
senders:
  - host: 127.0.0.1
    port: 9000
relays:
  - from: /fader/1
    to: /mixer/fader/1
`

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, 20*time.Millisecond, opts.IterationInterval)
	assert.Equal(t, limits.DefaultLogLength, opts.LogLength)
	assert.Equal(t, limits.MaxPacketSize, opts.ReadBufferSize)
	assert.False(t, opts.UseSimulation)
	assert.False(t, opts.IsolateHandlers)
}

func TestParseYAML(t *testing.T) {
	opts, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, opts.IterationInterval)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.True(t, opts.IsolateHandlers)
	assert.Equal(t, []int{8000, 8001}, opts.Receivers)
	assert.Equal(t, []SenderOptions{{Host: "127.0.0.1", Port: 9000}}, opts.Senders)
	assert.Equal(t, []RelayOptions{{From: "/fader/1", To: "/mixer/fader/1"}}, opts.Relays)
	// Unset fields keep their defaults.
	assert.Equal(t, 100*time.Millisecond, opts.ReadTimeout)
}

func TestParseEmptyDocument(t *testing.T) {
	opts, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("recievers: [8000]\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero interval", func(o *Options) { o.IterationInterval = 0 }},
		{"negative timeout", func(o *Options) { o.ReadTimeout = -time.Second }},
		{"buffer too large", func(o *Options) { o.ReadBufferSize = limits.MaxPacketSize + 1 }},
		{"log length zero", func(o *Options) { o.LogLength = 0 }},
		{"bad level", func(o *Options) { o.LogLevel = "loud" }},
		{"receiver port", func(o *Options) { o.Receivers = []int{0} }},
		{"sender port", func(o *Options) { o.Senders = []SenderOptions{{Host: "h", Port: 70000}} }},
		{"sender host", func(o *Options) { o.Senders = []SenderOptions{{Port: 9000}} }},
		{"relay from", func(o *Options) { o.Relays = []RelayOptions{{From: "fader"}} }},
		{"relay to", func(o *Options) { o.Relays = []RelayOptions{{From: "/a", To: "b"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(opts)
			assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
		})
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oscbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	t.Setenv("OSCBRIDGE_LOG_LEVEL", "warn")
	t.Setenv("OSCBRIDGE_USE_SIMULATION", "true")
	t.Setenv("OSCBRIDGE_SENDERS", "10.0.0.2:7000,[::1]:7001")

	opts, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", opts.LogLevel, "env overrides file")
	assert.True(t, opts.UseSimulation)
	assert.Equal(t, 10*time.Millisecond, opts.IterationInterval, "file value kept when env unset")
	assert.Equal(t, []int{8000, 8001}, opts.Receivers)
	assert.Equal(t, []SenderOptions{{Host: "10.0.0.2", Port: 7000}, {Host: "::1", Port: 7001}}, opts.Senders)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("OSCBRIDGE_RECEIVERS", "9001,9002")
	t.Setenv("OSCBRIDGE_ITERATION_INTERVAL", "5ms")

	opts, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []int{9001, 9002}, opts.Receivers)
	assert.Equal(t, 5*time.Millisecond, opts.IterationInterval)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("OSCBRIDGE_SENDERS", "no-port")
	_, err = Load("")
	assert.Error(t, err)
}

func TestTransportConfig(t *testing.T) {
	opts := DefaultOptions()
	opts.UseSimulation = true
	cfg := opts.TransportConfig()
	assert.True(t, cfg.UseSimulation)
	assert.Equal(t, opts.ReadBufferSize, cfg.ReadBufferSize)
	assert.Equal(t, opts.ReadTimeout, cfg.ReadTimeout)
}
