package codec

import (
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/opd-ai/oscbridge/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	data, err := Encode("/a", []message.Argument{message.Int(1), message.Float(2), message.Text("hi")})
	require.NoError(t, err)

	want := []byte{
		'/', 'a', 0, 0,
		',', 'i', 'f', 's', 0, 0, 0, 0,
		0, 0, 0, 1,
		0x40, 0, 0, 0,
		'h', 'i', 0, 0,
	}
	assert.Equal(t, want, data)
	assert.Zero(t, len(data)%4, "encoded messages are 4-byte aligned")
}

func TestEncodeDecode(t *testing.T) {
	args := []message.Argument{message.Text("127.0.0.1"), message.Int(9000), message.Text("OK")}
	data, err := Encode("/test/alive/", args)
	require.NoError(t, err)

	msgs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/test/alive/", msgs[0].Address)
	assert.Equal(t, []interface{}{"127.0.0.1", int32(9000), "OK"}, msgs[0].Values)
}

func TestEncodeNoArguments(t *testing.T) {
	data, err := Encode("/ping", nil)
	require.NoError(t, err)

	msgs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/ping", msgs[0].Address)
	assert.Empty(t, msgs[0].Values)
}

func TestEncodeRejectsZeroArgument(t *testing.T) {
	_, err := Encode("/a", []message.Argument{{}})
	assert.ErrorIs(t, err, message.ErrUnsupportedArgumentType)
}

func TestDecodeKeepsWideTypes(t *testing.T) {
	data, err := osc.NewMessage("/x", int64(-2), 0.5, true, []byte("abc")).MarshalBinary()
	require.NoError(t, err)

	msgs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, []interface{}{int64(-2), 0.5, true, []byte("abc")}, msgs[0].Values)
}

func TestDecodeBundleFlattens(t *testing.T) {
	inner := osc.NewBundle(time.Now())
	require.NoError(t, inner.Append(osc.NewMessage("/three", "c")))

	outer := osc.NewBundle(time.Now())
	require.NoError(t, outer.Append(osc.NewMessage("/one", int32(1))))
	require.NoError(t, outer.Append(inner))
	require.NoError(t, outer.Append(osc.NewMessage("/two", "b")))

	data, err := outer.MarshalBinary()
	require.NoError(t, err)

	msgs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "/one", msgs[0].Address)
	assert.Equal(t, "/two", msgs[1].Address)
	assert.Equal(t, []interface{}{"b"}, msgs[1].Values)
	assert.Equal(t, "/three", msgs[2].Address, "nested bundles follow the outer messages")
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string][]byte{
		"empty":              {},
		"no terminator":      []byte("/abc"),
		"bad address":        {'a', 0, 0, 0},
		"missing comma":      {'/', 'a', 0, 0, 'i', 0, 0, 0},
		"truncated int":      {'/', 'a', 0, 0, ',', 'i', 0, 0},
		"unknown tag":        {'/', 'a', 0, 0, ',', 'z', 0, 0},
		"bad bundle element": append(append([]byte("#bundle\x00"), make([]byte, 8)...), 0, 0, 0, 99),
		"bad bundle tag":     append([]byte("#bundlX\x00"), make([]byte, 8)...),
		"truncated time tag": []byte("#bundle\x00\x00"),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}
