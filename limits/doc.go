// Package limits provides centralized size constants and validation functions
// for the bridge. This package ensures consistent enforcement across the codec,
// the UDP transport and the endpoint registry.
//
// # Limits
//
//   - MaxPacketSize (65507 bytes): the largest UDP payload over IPv4. Encoded
//     messages above it are rejected before they reach the socket, and it is the
//     default receive buffer size.
//
//   - MaxAddressLength (1024 bytes): the longest accepted outbound address.
//
//   - DefaultLogLength (25 entries): the history kept per sender or receiver.
//     Older entries are evicted first.
//
// # Validation Functions
//
//	if err := limits.ValidateAddress("/fader/1"); err != nil {
//	    // ErrInvalidAddress
//	}
//
//	if err := limits.ValidatePacket(encoded); err != nil {
//	    // ErrPacketEmpty or ErrPacketTooLarge
//	}
package limits
