// Package mailbox provides a single-slot buffer between asynchronous packet
// arrival and a fixed-cadence consumer.
//
// At most one packet is held at a time. A deposit made while the slot is still
// unconsumed is dropped, so the producer never blocks and the buffer never
// grows; Drain empties the slot and hands the packet over exactly once.
package mailbox

import (
	"sync"

	"github.com/opd-ai/oscbridge/message"
	"github.com/sirupsen/logrus"
)

// Mailbox holds the most recent unconsumed packet.
// It is safe for one producer and one consumer to use concurrently.
type Mailbox struct {
	mu   sync.Mutex
	slot *message.Packet
	full bool
}

// New creates an empty mailbox.
func New() *Mailbox {
	return &Mailbox{}
}

// Deposit stores a packet if the slot is empty and reports whether it did.
// When the slot is full the packet is dropped and the stored one is kept.
func (m *Mailbox) Deposit(address string, args []message.Argument) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.full {
		logrus.WithFields(logrus.Fields{
			"function": "Mailbox.Deposit",
			"address":  address,
			"pending":  m.slot.Address,
		}).Debug("Mailbox full, dropping packet")
		return false
	}

	m.slot = &message.Packet{Address: address, Arguments: args}
	m.full = true
	return true
}

// Drain removes and returns the stored packet. The second result is false
// when the mailbox is empty.
func (m *Mailbox) Drain() (*message.Packet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.full {
		return nil, false
	}

	packet := m.slot
	m.slot = nil
	m.full = false
	return packet, true
}

// Reset discards any pending packet and reports whether there was one.
func (m *Mailbox) Reset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	discarded := m.full
	m.slot = nil
	m.full = false
	return discarded
}
