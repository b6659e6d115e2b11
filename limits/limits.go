// Package limits provides centralized size limits for OSC packets, addresses
// and endpoint logs. This ensures consistent validation across the codec,
// the transport and the endpoint registry.
package limits

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// MaxPacketSize is the largest UDP payload over IPv4 (65535 - 8 byte UDP
	// header - 20 byte IP header). Encoded packets above it cannot be sent.
	MaxPacketSize = 65507

	// MaxAddressLength bounds the address pattern of an outbound message.
	MaxAddressLength = 1024

	// DefaultLogLength is the number of entries kept per endpoint log.
	DefaultLogLength = 25

	// MaxLogLength is the largest configurable endpoint log length.
	MaxLogLength = 10000

	// MinPort and MaxPort bound valid UDP port numbers.
	MinPort = 1
	MaxPort = 65535
)

var (
	// ErrPacketEmpty indicates an empty packet was provided
	ErrPacketEmpty = errors.New("empty packet")

	// ErrPacketTooLarge indicates a packet exceeds the maximum size
	ErrPacketTooLarge = errors.New("packet too large")

	// ErrInvalidAddress indicates a malformed message address
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPort indicates a port outside 1..65535
	ErrInvalidPort = errors.New("invalid port")
)

// ValidatePacketSize validates an encoded packet against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidatePacketSize(packet []byte, maxSize int) error {
	if len(packet) == 0 {
		return ErrPacketEmpty
	}
	if len(packet) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPacketTooLarge, len(packet), maxSize)
	}
	return nil
}

// ValidatePacket validates an encoded packet against MaxPacketSize.
func ValidatePacket(packet []byte) error {
	return ValidatePacketSize(packet, MaxPacketSize)
}

// ValidateAddress checks that an outbound address starts with '/', contains
// no whitespace and is at most MaxAddressLength bytes.
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "/") {
		return fmt.Errorf("%w: %q must start with '/'", ErrInvalidAddress, address)
	}
	if len(address) > MaxAddressLength {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrInvalidAddress, len(address), MaxAddressLength)
	}
	if strings.IndexFunc(address, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidAddress, address)
	}
	return nil
}

// ValidatePort checks that port is a usable UDP port number.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%w: %d not in %d..%d", ErrInvalidPort, port, MinPort, MaxPort)
	}
	return nil
}

// ValidateLogLength checks a configured endpoint log length.
func ValidateLogLength(n int) error {
	if n < 1 || n > MaxLogLength {
		return fmt.Errorf("log length %d not in 1..%d", n, MaxLogLength)
	}
	return nil
}
