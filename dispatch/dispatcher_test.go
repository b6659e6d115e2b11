package dispatch

import (
	"errors"
	"testing"

	"github.com/opd-ai/oscbridge/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainOnceEmptyMailbox(t *testing.T) {
	d := New()
	called := false
	d.Subscribe("/a", func([]message.Argument) error {
		called = true
		return nil
	})

	assert.NoError(t, d.DrainOnce())
	assert.False(t, called)
}

func TestDrainOnceDeliversInRegistrationOrder(t *testing.T) {
	d := New()
	var order []string
	d.Subscribe("/a", func([]message.Argument) error { order = append(order, "first"); return nil })
	d.Subscribe("/a", func([]message.Argument) error { order = append(order, "second"); return nil })
	d.Subscribe("/b", func([]message.Argument) error { order = append(order, "other"); return nil })

	require.True(t, d.Deposit("/a", nil))
	require.NoError(t, d.DrainOnce())

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDuplicateRegistrationRunsTwice(t *testing.T) {
	d := New()
	count := 0
	h := func([]message.Argument) error { count++; return nil }
	d.Subscribe("/dup", h)
	d.Subscribe("/dup", h)

	d.Deposit("/dup", nil)
	require.NoError(t, d.DrainOnce())

	assert.Equal(t, 2, count)
	assert.Equal(t, 2, d.HandlerCount("/dup"))
}

func TestUnmatchedAddressIsSilentlyDropped(t *testing.T) {
	d := New()
	called := false
	d.Subscribe("/A", func([]message.Argument) error { called = true; return nil })

	d.Deposit("/a", []message.Argument{message.Int(1)})
	assert.NoError(t, d.DrainOnce())
	assert.False(t, called, "matching is case-sensitive")
	assert.True(t, d.Deposit("/a", nil), "unmatched packet is still consumed")
}

func TestExactlyOnceDelivery(t *testing.T) {
	d := New()
	var got []int32
	d.Subscribe("/n", func(args []message.Argument) error {
		v, _ := args[0].Int()
		got = append(got, v)
		return nil
	})

	d.Deposit("/n", []message.Argument{message.Int(1)})
	d.Deposit("/n", []message.Argument{message.Int(2)}) // dropped
	require.NoError(t, d.DrainOnce())
	require.NoError(t, d.DrainOnce())
	d.Deposit("/n", []message.Argument{message.Int(3)})
	require.NoError(t, d.DrainOnce())

	assert.Equal(t, []int32{1, 3}, got)
}

func TestHandlerErrorAbortsRemainingByDefault(t *testing.T) {
	d := New()
	boom := errors.New("boom")
	var ran []int
	d.Subscribe("/a", func([]message.Argument) error { ran = append(ran, 0); return nil })
	d.Subscribe("/a", func([]message.Argument) error { ran = append(ran, 1); return boom })
	d.Subscribe("/a", func([]message.Argument) error { ran = append(ran, 2); return nil })

	d.Deposit("/a", nil)
	err := d.DrainOnce()

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "/a", herr.Address)
	assert.Equal(t, 1, herr.Index)
	assert.Equal(t, []int{0, 1}, ran)

	// The loop stays operable after a failed cycle.
	ran = nil
	require.True(t, d.Deposit("/a", nil))
	assert.Error(t, d.DrainOnce())
	assert.Equal(t, []int{0, 1}, ran)
}

func TestIsolatedModeRunsEveryHandler(t *testing.T) {
	d := New(WithIsolation(true))
	var ran []int
	d.Subscribe("/a", func([]message.Argument) error { ran = append(ran, 0); return errors.New("bad") })
	d.Subscribe("/a", func([]message.Argument) error { ran = append(ran, 1); return nil })

	d.Deposit("/a", nil)
	assert.NoError(t, d.DrainOnce())
	assert.Equal(t, []int{0, 1}, ran)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	d := New()
	d.Subscribe("/p", func([]message.Argument) error { panic("kaboom") })

	d.Deposit("/p", nil)
	err := d.DrainOnce()
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestSubscribeNilHandlerIgnored(t *testing.T) {
	d := New()
	d.Subscribe("/a", nil)
	assert.Equal(t, 0, d.HandlerCount("/a"))
	assert.Empty(t, d.Addresses())
}

func TestHandlerCanSubscribeDuringDispatch(t *testing.T) {
	d := New()
	d.Subscribe("/a", func([]message.Argument) error {
		d.Subscribe("/b", func([]message.Argument) error { return nil })
		return nil
	})

	d.Deposit("/a", nil)
	require.NoError(t, d.DrainOnce())
	assert.Equal(t, 1, d.HandlerCount("/b"))
	assert.ElementsMatch(t, []string{"/a", "/b"}, d.Addresses())
}

func TestResetDiscardsPendingPacket(t *testing.T) {
	d := New()
	called := false
	d.Subscribe("/a", func([]message.Argument) error { called = true; return nil })

	assert.False(t, d.Reset(), "nothing pending")
	d.Deposit("/a", nil)
	assert.True(t, d.Reset())
	require.NoError(t, d.DrainOnce())
	assert.False(t, called)
	assert.Equal(t, 1, d.HandlerCount("/a"), "handlers survive a reset")
}
