// Package endpoint keeps the named outbound senders and inbound receivers of a
// bridge.
//
// Names are derived from the destination, so creation is idempotent:
//
//	reg := endpoint.NewRegistry(transport, dispatcher.Deposit)
//	name, err := reg.EnsureSender("127.0.0.1", 9000) // "client-127.0.0.1-9000"
//	_, err = reg.EnsureReceiver(8000)                // "server-8000"
//
// A new sender immediately sends a handshake to /test/alive/ carrying its host,
// port and "OK". Every sent message and every received packet is kept in a
// per-endpoint history of DefaultLogLength entries, oldest evicted first. Log
// lines are timestamped in UTC with zero-padded milliseconds:
//
//	2026-10-15 08:30:00.005 : /fader/1 0.5
//
// TeardownAll closes every handle and returns the registry to its empty
// state; subsequent Ensure calls behave as first-time creation.
package endpoint
