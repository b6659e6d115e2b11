package factory

import (
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/limits"
	"github.com/opd-ai/oscbridge/testing"
	"github.com/opd-ai/oscbridge/transport"
	"github.com/sirupsen/logrus"
)

// Validation constants for configuration bounds checking.
const (
	// MinReadTimeout is the shortest allowed receiver read deadline.
	MinReadTimeout = time.Millisecond
	// MaxReadTimeout is the longest allowed receiver read deadline.
	MaxReadTimeout = 10 * time.Second
	// MinReadBufferSize is the smallest allowed receive buffer in bytes.
	MinReadBufferSize = 64
)

// TransportFactory creates transport implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type TransportFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.TransportConfig
}

// NewTransportFactory creates a factory. A nil config selects the defaults.
func NewTransportFactory(config *interfaces.TransportConfig) *TransportFactory {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	logConfigurationInfo(&cfg)

	return &TransportFactory{defaultConfig: &cfg}
}

// DefaultConfig returns the default transport configuration.
//
// Default Value Rationale:
//   - UseSimulation: false - real sockets unless simulation is explicitly enabled
//   - ReadBufferSize: limits.MaxPacketSize - any UDP datagram fits
//   - ReadTimeout: 100ms - bounds how long Close waits for the read loop
func DefaultConfig() *interfaces.TransportConfig {
	return &interfaces.TransportConfig{
		UseSimulation:  false,
		ReadBufferSize: limits.MaxPacketSize,
		ReadTimeout:    100 * time.Millisecond,
	}
}

// ValidateConfig checks the configuration bounds.
func ValidateConfig(config *interfaces.TransportConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.ReadTimeout < MinReadTimeout || config.ReadTimeout > MaxReadTimeout {
		return fmt.Errorf("read timeout %v not in [%v, %v]", config.ReadTimeout, MinReadTimeout, MaxReadTimeout)
	}
	if config.ReadBufferSize < MinReadBufferSize || config.ReadBufferSize > limits.MaxPacketSize {
		return fmt.Errorf("read buffer size %d not in [%d, %d]", config.ReadBufferSize, MinReadBufferSize, limits.MaxPacketSize)
	}
	return nil
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
func logConfigurationInfo(config *interfaces.TransportConfig) {
	logrus.WithFields(logrus.Fields{
		"function":         "NewTransportFactory",
		"use_simulation":   config.UseSimulation,
		"read_buffer_size": config.ReadBufferSize,
		"read_timeout":     config.ReadTimeout,
	}).Info("Created transport factory with configuration")
}

// CreateTransport creates a transport implementation based on the default configuration
func (f *TransportFactory) CreateTransport() (interfaces.ITransport, error) {
	return f.CreateTransportWithConfig(nil)
}

// CreateTransportWithConfig creates a transport implementation with custom configuration
func (f *TransportFactory) CreateTransportWithConfig(config *interfaces.TransportConfig) (interfaces.ITransport, error) {
	if config == nil {
		f.mu.RLock()
		config = f.defaultConfig
		f.mu.RUnlock()
	}

	if err := ValidateConfig(config); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "CreateTransportWithConfig",
			"error":    err.Error(),
		}).Error("Invalid transport configuration")
		return nil, err
	}

	if config.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "CreateTransportWithConfig",
			"type":     "simulation",
		}).Info("Creating simulation transport implementation")

		return testing.NewSimulatedTransport(config), nil
	}

	logrus.WithFields(logrus.Fields{
		"function":         "CreateTransportWithConfig",
		"type":             "udp",
		"read_buffer_size": config.ReadBufferSize,
		"read_timeout":     config.ReadTimeout,
	}).Info("Creating UDP transport implementation")

	return transport.NewUDPTransport(config), nil
}

// CreateSimulationForTesting creates a simulation implementation specifically
// for testing. The concrete type is returned so tests can inject packets and
// inspect sent messages.
func (f *TransportFactory) CreateSimulationForTesting() *testing.SimulatedTransport {
	f.mu.RLock()
	testConfig := *f.defaultConfig
	f.mu.RUnlock()
	testConfig.UseSimulation = true

	logrus.WithFields(logrus.Fields{
		"function":     "CreateSimulationForTesting",
		"read_timeout": testConfig.ReadTimeout,
	}).Debug("Creating simulation implementation for testing")

	return testing.NewSimulatedTransport(&testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *TransportFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *TransportFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}
