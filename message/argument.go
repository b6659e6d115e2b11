package message

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnsupportedArgumentType indicates a value outside the integer, float and
// string kinds carried by packets.
var ErrUnsupportedArgumentType = errors.New("unsupported argument type")

// Kind identifies which variant of an Argument is active.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindText
)

// String returns the OSC type tag character for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "i"
	case KindFloat:
		return "f"
	case KindText:
		return "s"
	default:
		return "?"
	}
}

// Argument holds exactly one of an int32, a float32 or a string.
// The zero value is not a valid argument; use Int, Float or Text.
type Argument struct {
	kind Kind
	i    int32
	f    float32
	s    string
}

// Int returns an integer argument.
func Int(v int32) Argument {
	return Argument{kind: KindInt, i: v}
}

// Float returns a floating-point argument.
func Float(v float32) Argument {
	return Argument{kind: KindFloat, f: v}
}

// Text returns a string argument.
func Text(v string) Argument {
	return Argument{kind: KindText, s: v}
}

// Kind reports the active variant.
func (a Argument) Kind() Kind {
	return a.kind
}

// Int returns the integer value and whether the argument is an integer.
func (a Argument) Int() (int32, bool) {
	return a.i, a.kind == KindInt
}

// Float returns the float value and whether the argument is a float.
func (a Argument) Float() (float32, bool) {
	return a.f, a.kind == KindFloat
}

// Text returns the string value and whether the argument is a string.
func (a Argument) Text() (string, bool) {
	return a.s, a.kind == KindText
}

// Value returns the active variant as an interface value
// (int32, float32 or string), or nil for the zero Argument.
func (a Argument) Value() interface{} {
	switch a.kind {
	case KindInt:
		return a.i
	case KindFloat:
		return a.f
	case KindText:
		return a.s
	default:
		return nil
	}
}

// String formats the active value the way log entries render it.
func (a Argument) String() string {
	switch a.kind {
	case KindInt:
		return strconv.FormatInt(int64(a.i), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(a.f), 'g', -1, 32)
	case KindText:
		return a.s
	default:
		return "<invalid>"
	}
}

// FromValue converts a decoded or caller-supplied value into an Argument.
// Integer kinds must fit in an int32. Values of any other type fail with
// ErrUnsupportedArgumentType.
func FromValue(v interface{}) (Argument, error) {
	switch val := v.(type) {
	case Argument:
		if val.kind == 0 {
			return Argument{}, fmt.Errorf("%w: zero Argument", ErrUnsupportedArgumentType)
		}
		return val, nil
	case int32:
		return Int(val), nil
	case int:
		return intArgument(int64(val))
	case int8:
		return Int(int32(val)), nil
	case int16:
		return Int(int32(val)), nil
	case int64:
		return intArgument(val)
	case uint8:
		return Int(int32(val)), nil
	case uint16:
		return Int(int32(val)), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(float32(val)), nil
	case string:
		return Text(val), nil
	default:
		return Argument{}, fmt.Errorf("%w: %T", ErrUnsupportedArgumentType, v)
	}
}

func intArgument(v int64) (Argument, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return Argument{}, fmt.Errorf("%w: integer %d overflows int32", ErrUnsupportedArgumentType, v)
	}
	return Int(int32(v)), nil
}

// FromWireValue converts a value decoded from an inbound packet. Only int32,
// float32 and string are accepted; wider wire types such as int64, float64,
// blobs and booleans fail with ErrUnsupportedArgumentType instead of being
// narrowed.
func FromWireValue(v interface{}) (Argument, error) {
	switch val := v.(type) {
	case int32:
		return Int(val), nil
	case float32:
		return Float(val), nil
	case string:
		return Text(val), nil
	default:
		return Argument{}, fmt.Errorf("%w: %T", ErrUnsupportedArgumentType, v)
	}
}

// FromWireValues converts inbound values in order with FromWireValue. Each
// value that cannot be converted is skipped and its error returned in
// dropped, so the remaining arguments are still delivered.
func FromWireValues(values []interface{}) (args []Argument, dropped []error) {
	args = make([]Argument, 0, len(values))
	for i, v := range values {
		arg, err := FromWireValue(v)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("argument %d: %w", i, err))
			continue
		}
		args = append(args, arg)
	}
	return args, dropped
}

// ConvertAll converts values in order and fails on the first value that
// cannot be represented.
func ConvertAll(values []interface{}) ([]Argument, error) {
	args := make([]Argument, 0, len(values))
	for i, v := range values {
		arg, err := FromValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args = append(args, arg)
	}
	return args, nil
}
