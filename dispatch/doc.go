// Package dispatch routes drained packets to application handlers.
//
// A [Dispatcher] owns a single-slot mailbox and a registry mapping each
// address to an ordered list of handlers. Producers call [Dispatcher.Deposit]
// from the transport goroutine; the host calls [Dispatcher.DrainOnce] once per
// processing cycle:
//
//	d := dispatch.New()
//	d.Subscribe("/fader/1", func(args []message.Argument) error {
//	    v, _ := args[0].Float()
//	    return setLevel(v)
//	})
//
//	for running {
//	    if err := d.DrainOnce(); err != nil {
//	        log.Printf("drain: %v", err)
//	    }
//	    time.Sleep(interval)
//	}
//
// Registrations are additive and never removed. Address matching is exact and
// case-sensitive. Handlers run synchronously on the caller's goroutine.
package dispatch
