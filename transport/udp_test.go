package transport

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport() *UDPTransport {
	return NewUDPTransport(&interfaces.TransportConfig{ReadTimeout: 20 * time.Millisecond})
}

// freePort asks the kernel for an unused UDP port.
func freePort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

type received struct {
	address string
	values  []interface{}
}

func TestUDPSendReceive(t *testing.T) {
	tr := newTestTransport()
	assert.False(t, tr.IsSimulation())

	port := freePort(t)
	receiver, err := tr.OpenReceiver(port)
	require.NoError(t, err)
	defer receiver.Close()

	var mu sync.Mutex
	var got []received
	receiver.OnPacket(func(address string, values []interface{}) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, received{address, values})
	})

	sender, err := tr.OpenSender("127.0.0.1", port)
	require.NoError(t, err)
	defer sender.Close()

	require.NoError(t, sender.Send("/a", []message.Argument{message.Float(1), message.Float(2), message.Text("hi")}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/a", got[0].address)
	assert.Equal(t, []interface{}{float32(1), float32(2), "hi"}, got[0].values)
}

func TestUDPSenderClose(t *testing.T) {
	tr := newTestTransport()
	sender, err := tr.OpenSender("127.0.0.1", freePort(t))
	require.NoError(t, err)

	assert.NotNil(t, sender.RemoteAddr())
	require.NoError(t, sender.Close())
	assert.NoError(t, sender.Close(), "second close is a no-op")
	assert.ErrorIs(t, sender.Send("/a", nil), ErrClosed)
}

func TestUDPReceiverPortInUse(t *testing.T) {
	tr := newTestTransport()
	port := freePort(t)

	first, err := tr.OpenReceiver(port)
	require.NoError(t, err)
	defer first.Close()

	_, err = tr.OpenReceiver(port)
	assert.Error(t, err)
}

func TestUDPReceiverCloseReleasesPort(t *testing.T) {
	tr := newTestTransport()
	port := freePort(t)

	r, err := tr.OpenReceiver(port)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close())

	again, err := tr.OpenReceiver(port)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestUDPOpenSenderBadHost(t *testing.T) {
	tr := newTestTransport()
	_, err := tr.OpenSender("not a host", 9000)
	assert.Error(t, err)
}
