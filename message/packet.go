package message

import "strings"

// Packet is a decoded message: an address and its ordered arguments.
// The address is an exact-match, case-sensitive routing key.
type Packet struct {
	Address   string
	Arguments []Argument
}

// NewPacket builds a packet from an address and arguments.
func NewPacket(address string, args ...Argument) *Packet {
	return &Packet{Address: address, Arguments: args}
}

// Values returns the arguments as interface values in order,
// the form the transport layer encodes.
func (p *Packet) Values() []interface{} {
	values := make([]interface{}, len(p.Arguments))
	for i, arg := range p.Arguments {
		values[i] = arg.Value()
	}
	return values
}

// String renders the packet as "<address> <v1> <v2> ...".
func (p *Packet) String() string {
	data := FormatData(p.Arguments)
	if data == "" {
		return p.Address
	}
	return p.Address + " " + data
}

// FormatData joins the argument values with single spaces.
func FormatData(args []Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
