// Package factory provides a factory pattern implementation for creating
// transport implementations in oscbridge.
//
// The factory abstracts the creation of transports, allowing seamless switching
// between the in-memory simulation (for testing) and OSC over UDP without
// changing consuming code.
//
// # Configuration
//
// The factory is configured with an interfaces.TransportConfig. The config
// package fills it from defaults, a YAML file and OSCBRIDGE_* environment
// variables before it reaches the factory.
//
// # Usage
//
//	factory := factory.NewTransportFactory(nil)
//
//	t, err := factory.CreateTransport()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Or force the in-memory transport regardless of the configuration
//	factory.SwitchToSimulation()
//
// # Testing Support
//
// CreateSimulationForTesting returns the concrete *testing.SimulatedTransport
// so tests can inject packets and inspect sent messages.
package factory
