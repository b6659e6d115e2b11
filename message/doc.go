// Package message defines the values carried between the transport layer and
// application callbacks.
//
// An [Argument] is a closed tagged union over the three primitive kinds the
// bridge understands: 32-bit integers, 32-bit floats and strings. There is no
// implicit conversion between variants; accessors report whether the requested
// variant is the active one:
//
//	arg := message.Float(1.5)
//	if f, ok := arg.Float(); ok {
//	    fmt.Println(f)
//	}
//
// A [Packet] pairs an address with its ordered arguments. Caller-supplied
// values are converted with [FromValue], which also accepts the other Go
// integer and float types when they fit. Values decoded from the wire go
// through [FromWireValues], which keeps only int32, float32 and string and
// reports the dropped ones so a single bad argument never discards a whole
// packet.
package message
