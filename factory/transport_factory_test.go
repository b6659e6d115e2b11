package factory

import (
	"testing"
	"time"

	"github.com/opd-ai/oscbridge/interfaces"
)

// TestNewTransportFactory verifies default factory creation
func TestNewTransportFactory(t *testing.T) {
	factory := NewTransportFactory(nil)
	if factory == nil {
		t.Fatal("NewTransportFactory returned nil")
	}
	if factory.IsUsingSimulation() {
		t.Error("default factory should use the real transport")
	}
}

func TestCreateTransportSelectsImplementation(t *testing.T) {
	factory := NewTransportFactory(nil)

	udp, err := factory.CreateTransport()
	if err != nil {
		t.Fatalf("CreateTransport: %v", err)
	}
	if udp.IsSimulation() {
		t.Error("expected UDP transport")
	}

	factory.SwitchToSimulation()
	sim, err := factory.CreateTransport()
	if err != nil {
		t.Fatalf("CreateTransport: %v", err)
	}
	if !sim.IsSimulation() {
		t.Error("expected simulated transport after SwitchToSimulation")
	}
	if !factory.IsUsingSimulation() {
		t.Error("IsUsingSimulation should report the switch")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *interfaces.TransportConfig
		wantErr bool
	}{
		{"nil", nil, true},
		{"defaults", DefaultConfig(), false},
		{"zero timeout", &interfaces.TransportConfig{ReadBufferSize: 1024}, true},
		{"huge timeout", &interfaces.TransportConfig{ReadBufferSize: 1024, ReadTimeout: time.Minute}, true},
		{"tiny buffer", &interfaces.TransportConfig{ReadBufferSize: 8, ReadTimeout: time.Second}, true},
		{"buffer too large", &interfaces.TransportConfig{ReadBufferSize: 70000, ReadTimeout: time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateTransportWithInvalidConfig(t *testing.T) {
	factory := NewTransportFactory(nil)
	_, err := factory.CreateTransportWithConfig(&interfaces.TransportConfig{})
	if err == nil {
		t.Error("expected validation error")
	}
}

func TestCreateSimulationForTesting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 5 * time.Millisecond
	factory := NewTransportFactory(cfg)

	sim := factory.CreateSimulationForTesting()
	if sim == nil || !sim.IsSimulation() {
		t.Fatal("expected simulated transport")
	}
	if factory.IsUsingSimulation() {
		t.Error("CreateSimulationForTesting must not switch the factory")
	}
}
