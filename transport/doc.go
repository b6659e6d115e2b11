// Package transport provides the UDP implementation of the bridge's transport
// contract (interfaces.ITransport).
//
// # Architecture
//
// Senders are connected UDP sockets; each Send encodes one OSC message with
// the codec package, checks it against limits.MaxPacketSize and writes it.
// Receivers bind a local port and run a read loop on their own goroutine.
// Every datagram is decoded (bundles are flattened) and each contained
// message is handed to the registered packet handler in order.
//
//	t := transport.NewUDPTransport(nil)
//
//	receiver, err := t.OpenReceiver(8000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	receiver.OnPacket(func(address string, values []interface{}) {
//	    fmt.Println(address, values)
//	})
//
//	sender, err := t.OpenSender("127.0.0.1", 9000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = sender.Send("/fader/1", []message.Argument{message.Float(0.5)})
//
// # Shutdown
//
// The read loop uses a short read deadline so Close is noticed promptly.
// Close cancels the loop, closes the socket and waits for the goroutine to
// exit, which releases the port for immediate reuse. Both handle types may be
// closed more than once.
//
// # Errors
//
// Undecodable datagrams are logged and discarded; they never stop the loop.
// Dial and listen failures are returned wrapped with context.
package transport
