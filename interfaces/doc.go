// Package interfaces defines the transport abstractions the bridge consumes.
//
// This package provides the seam between the endpoint registry and the wire:
// the registry only opens, uses and closes handles through these interfaces,
// so the same application code runs over real UDP sockets or over the
// in-memory simulation used in tests.
//
// # Core Interfaces
//
// [ITransport] opens handles:
//
//	sender, err := transport.OpenSender("127.0.0.1", 9000)
//	if err != nil {
//	    return err
//	}
//	err = sender.Send("/fader/1", []message.Argument{message.Float(0.5)})
//
// [IReceiver] delivers decoded packets through a registered [PacketHandler]:
//
//	receiver, err := transport.OpenReceiver(8000)
//	if err != nil {
//	    return err
//	}
//	receiver.OnPacket(func(address string, values []interface{}) {
//	    fmt.Println(address, values)
//	})
//
// # Implementation Selection
//
// The factory package creates implementations based on [TransportConfig]:
//   - UseSimulation=true: in-memory transport from the testing package
//   - UseSimulation=false: UDP transport from the transport package
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. Receiver callbacks run
// on a transport-owned goroutine, concurrently with application code.
//
// # Network Interface Compliance
//
// Addresses are exposed as net.Addr. Implementations should not leak concrete
// types such as *net.UDPAddr through these interfaces.
package interfaces
