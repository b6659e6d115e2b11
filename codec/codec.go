// Package codec encodes and decodes OSC 1.0 packets on top of go-osc.
//
// Only the wire format is taken from go-osc; sockets and dispatch stay in the
// transport and dispatch packages. Outbound messages carry only the closed
// argument set (int32 'i', float32 'f', string 's'). Decoded values keep the
// Go types go-osc produces (int64 for 'h', float64 for 'd', []byte for 'b'
// and so on) and are filtered by the caller.
package codec

import (
	"errors"
	"fmt"

	"github.com/hypebeast/go-osc/osc"
	"github.com/opd-ai/oscbridge/message"
)

// ErrMalformedPacket indicates data that does not parse as an OSC packet.
var ErrMalformedPacket = errors.New("malformed OSC packet")

// Message is a decoded OSC message before argument filtering.
type Message struct {
	Address string
	Values  []interface{}
}

// Encode serializes one message.
func Encode(address string, args []message.Argument) ([]byte, error) {
	msg := osc.NewMessage(address)
	for _, arg := range args {
		switch arg.Kind() {
		case message.KindInt, message.KindFloat, message.KindText:
			msg.Append(arg.Value())
		default:
			return nil, fmt.Errorf("encode %s: %w", address, message.ErrUnsupportedArgumentType)
		}
	}

	data, err := msg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", address, err)
	}
	return data, nil
}

// Decode parses a packet. A plain message yields one element. A bundle is
// flattened depth first: its own messages in order, then those of each nested
// bundle.
func Decode(data []byte) ([]Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrMalformedPacket)
	}

	packet, err := osc.ParsePacket(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}

	switch p := packet.(type) {
	case *osc.Message:
		return []Message{fromOSC(p)}, nil
	case *osc.Bundle:
		return flatten(p, nil), nil
	default:
		// go-osc yields no packet for data that starts with neither '/' nor '#'.
		return nil, fmt.Errorf("%w: not a message or bundle", ErrMalformedPacket)
	}
}

func flatten(b *osc.Bundle, out []Message) []Message {
	for _, m := range b.Messages {
		out = append(out, fromOSC(m))
	}
	for _, nested := range b.Bundles {
		out = flatten(nested, out)
	}
	return out
}

func fromOSC(m *osc.Message) Message {
	return Message{Address: m.Address, Values: m.Arguments}
}
