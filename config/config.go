package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/opd-ai/oscbridge/factory"
	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/limits"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OSCBRIDGE_"

// DefaultIterationInterval is the recommended drain cadence.
const DefaultIterationInterval = 20 * time.Millisecond

// ErrInvalidOptions is wrapped by every validation failure.
var ErrInvalidOptions = errors.New("invalid options")

// SenderOptions names an outbound destination opened at startup.
type SenderOptions struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RelayOptions forwards every packet received on From to all senders under To.
// An empty To keeps the inbound address.
type RelayOptions struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Options configures a bridge and its host loop.
type Options struct {
	IterationInterval time.Duration   `yaml:"iteration_interval"`
	LogLevel          string          `yaml:"log_level"`
	IsolateHandlers   bool            `yaml:"isolate_handlers"`
	UseSimulation     bool            `yaml:"use_simulation"`
	ReadBufferSize    int             `yaml:"read_buffer_size"`
	ReadTimeout       time.Duration   `yaml:"read_timeout"`
	LogLength         int             `yaml:"log_length"`
	Receivers         []int           `yaml:"receivers"`
	Senders           []SenderOptions `yaml:"senders"`
	Relays            []RelayOptions  `yaml:"relays"`
}

// envOverrides holds the values that may be set from the environment.
// Senders are given as host:port pairs.
type envOverrides struct {
	IterationInterval time.Duration `env:"ITERATION_INTERVAL"`
	LogLevel          string        `env:"LOG_LEVEL"`
	IsolateHandlers   bool          `env:"ISOLATE_HANDLERS"`
	UseSimulation     bool          `env:"USE_SIMULATION"`
	ReadBufferSize    int           `env:"READ_BUFFER_SIZE"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT"`
	LogLength         int           `env:"LOG_LENGTH"`
	Receivers         []int         `env:"RECEIVERS" envSeparator:","`
	Senders           []string      `env:"SENDERS"   envSeparator:","`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() *Options {
	return &Options{
		IterationInterval: DefaultIterationInterval,
		LogLevel:          "info",
		ReadBufferSize:    limits.MaxPacketSize,
		ReadTimeout:       100 * time.Millisecond,
		LogLength:         limits.DefaultLogLength,
	}
}

// Load builds options from defaults, then the YAML file at path (skipped when
// path is empty), then OSCBRIDGE_ environment variables, and validates the
// result.
func Load(path string) (*Options, error) {
	opts := DefaultOptions()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := opts.mergeYAML(data); err != nil {
			return nil, err
		}
	}

	if err := opts.applyEnv(); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "config.Load",
		"path":      path,
		"receivers": len(opts.Receivers),
		"senders":   len(opts.Senders),
		"relays":    len(opts.Relays),
	}).Debug("Configuration loaded")

	return opts, nil
}

// Parse merges YAML data over the defaults and validates the result. It does
// not consult the environment.
func Parse(data []byte) (*Options, error) {
	opts := DefaultOptions()
	if err := opts.mergeYAML(data); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) mergeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(o); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (o *Options) applyEnv() error {
	raw := envOverrides{
		IterationInterval: o.IterationInterval,
		LogLevel:          o.LogLevel,
		IsolateHandlers:   o.IsolateHandlers,
		UseSimulation:     o.UseSimulation,
		ReadBufferSize:    o.ReadBufferSize,
		ReadTimeout:       o.ReadTimeout,
		LogLength:         o.LogLength,
		Receivers:         o.Receivers,
	}
	for _, s := range o.Senders {
		raw.Senders = append(raw.Senders, net.JoinHostPort(s.Host, strconv.Itoa(s.Port)))
	}

	if err := env.ParseWithOptions(&raw, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	senders := make([]SenderOptions, 0, len(raw.Senders))
	for _, hp := range raw.Senders {
		host, portStr, err := net.SplitHostPort(hp)
		if err != nil {
			return fmt.Errorf("parse env: sender %q: %w", hp, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("parse env: sender %q: %w", hp, err)
		}
		senders = append(senders, SenderOptions{Host: host, Port: port})
	}

	o.IterationInterval = raw.IterationInterval
	o.LogLevel = raw.LogLevel
	o.IsolateHandlers = raw.IsolateHandlers
	o.UseSimulation = raw.UseSimulation
	o.ReadBufferSize = raw.ReadBufferSize
	o.ReadTimeout = raw.ReadTimeout
	o.LogLength = raw.LogLength
	o.Receivers = raw.Receivers
	if len(senders) > 0 {
		o.Senders = senders
	}
	return nil
}

// Validate checks ports, durations, sizes and the log level. Transport
// settings must pass factory.ValidateConfig.
func (o *Options) Validate() error {
	if o.IterationInterval <= 0 {
		return fmt.Errorf("%w: iteration interval must be positive, got %v", ErrInvalidOptions, o.IterationInterval)
	}
	if err := factory.ValidateConfig(o.TransportConfig()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if err := limits.ValidateLogLength(o.LogLength); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	for _, port := range o.Receivers {
		if err := limits.ValidatePort(port); err != nil {
			return fmt.Errorf("%w: receiver: %w", ErrInvalidOptions, err)
		}
	}
	for _, s := range o.Senders {
		if s.Host == "" {
			return fmt.Errorf("%w: sender host is empty", ErrInvalidOptions)
		}
		if err := limits.ValidatePort(s.Port); err != nil {
			return fmt.Errorf("%w: sender %s: %w", ErrInvalidOptions, s.Host, err)
		}
	}
	for _, r := range o.Relays {
		if err := limits.ValidateAddress(r.From); err != nil {
			return fmt.Errorf("%w: relay from: %w", ErrInvalidOptions, err)
		}
		if r.To != "" {
			if err := limits.ValidateAddress(r.To); err != nil {
				return fmt.Errorf("%w: relay to: %w", ErrInvalidOptions, err)
			}
		}
	}
	return nil
}

// TransportConfig returns the transport settings carried by the options.
func (o *Options) TransportConfig() *interfaces.TransportConfig {
	return &interfaces.TransportConfig{
		UseSimulation:  o.UseSimulation,
		ReadBufferSize: o.ReadBufferSize,
		ReadTimeout:    o.ReadTimeout,
	}
}
