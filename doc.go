// Package oscbridge bridges Open Sound Control traffic to application
// callbacks.
//
// A Bridge owns one Dispatcher and one endpoint Registry. Receivers deposit
// each decoded packet into a single-slot mailbox; the host drains it once per
// cycle and every handler registered for the packet's exact address runs in
// registration order. Senders are named after their destination and created at
// most once.
//
// # Getting Started
//
//	opts := config.DefaultOptions()
//	bridge, err := oscbridge.New(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Kill()
//
//	if err := bridge.ReceiverPort(8000); err != nil {
//	    log.Fatal(err)
//	}
//	mixer, err := bridge.SenderAddress("127.0.0.1", 9000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bridge.OnReceive("/fader/1", func(args []message.Argument) error {
//	    return bridge.Send(mixer, "/mixer/fader/1", args[0])
//	})
//
//	for bridge.IsRunning() {
//	    bridge.Iterate()
//	    time.Sleep(bridge.IterationInterval())
//	}
//
// # Backpressure
//
// The mailbox holds one packet. A packet that arrives while an earlier one is
// still pending is dropped, so a slow drain loop sees the oldest undrained
// state rather than a growing queue.
//
// # Handler Failures
//
// By default the first failing handler aborts the remaining handlers of that
// cycle and DrainOnce returns its error. With Options.IsolateHandlers every
// handler runs and failures are only logged. Panics are recovered in both
// modes. Iterate never returns an error; it logs a failed cycle and the next
// cycle proceeds normally.
//
// # Process Default
//
// Default lazily creates a single bridge with default options for programs
// that want one shared instance instead of passing a *Bridge around.
//
// # Testing
//
// Set Options.UseSimulation, or pass a transport from the testing package to
// NewWithTransport, to run without sockets. Simulated senders loop back to a
// simulated receiver on the same port.
package oscbridge
