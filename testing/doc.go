// Package testing provides an in-memory transport for deterministic testing of
// the bridge.
//
// # Overview
//
// [SimulatedTransport] implements interfaces.ITransport without sockets.
// Senders record every message they send; receivers deliver packets injected
// by the test synchronously on the calling goroutine. A message sent to a port
// with an open simulated receiver is looped back to that receiver, which lets
// a single process exercise both directions.
//
// # Simulation vs Real Implementation
//
//   - Simulation (this package): all traffic stays in memory with send
//     records for verification. Used for unit and integration testing.
//
//   - Real (transport package): OSC over UDP sockets.
//
// Both implementations conform to interfaces.ITransport, allowing seamless
// switching via the factory package.
//
// # Usage
//
//	sim := testing.NewSimulatedTransport(nil)
//	sender, _ := sim.OpenSender("127.0.0.1", 9000)
//	_ = sender.Send("/a", []message.Argument{message.Int(1)})
//
//	records := sim.Senders()[0].Sent()
//
//	receiver, _ := sim.OpenReceiver(8000)
//	receiver.OnPacket(handler)
//	sim.Receiver(8000).Inject("/a", []interface{}{float32(1)})
//
// # Failure Injection
//
// FailOpen makes subsequent open calls fail, for exercising error paths that
// must leave callers' state unchanged.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package testing
