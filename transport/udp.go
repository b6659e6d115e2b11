package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/opd-ai/oscbridge/codec"
	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/limits"
	"github.com/opd-ai/oscbridge/message"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when sending on a closed handle.
var ErrClosed = errors.New("transport handle closed")

const defaultReadTimeout = 100 * time.Millisecond

// UDPTransport opens OSC-over-UDP senders and receivers.
// It satisfies the interfaces.ITransport interface.
type UDPTransport struct {
	readBufferSize int
	readTimeout    time.Duration
}

// NewUDPTransport creates a UDP transport from config. Zero values fall back
// to limits.MaxPacketSize and a 100ms read timeout.
func NewUDPTransport(config *interfaces.TransportConfig) *UDPTransport {
	t := &UDPTransport{
		readBufferSize: limits.MaxPacketSize,
		readTimeout:    defaultReadTimeout,
	}
	if config != nil {
		if config.ReadBufferSize > 0 {
			t.readBufferSize = config.ReadBufferSize
		}
		if config.ReadTimeout > 0 {
			t.readTimeout = config.ReadTimeout
		}
	}
	return t
}

// IsSimulation returns false.
func (t *UDPTransport) IsSimulation() bool {
	return false
}

// OpenSender dials a UDP socket to host:port.
func (t *UDPTransport) OpenSender(host string, port int) (interfaces.ISender, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	logrus.WithFields(logrus.Fields{
		"function": "UDPTransport.OpenSender",
		"address":  address,
	}).Debug("Dialing UDP sender")

	conn, err := net.Dial("udp", address)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "UDPTransport.OpenSender",
			"address":  address,
			"error":    err.Error(),
		}).Error("Failed to dial UDP sender")
		return nil, fmt.Errorf("UDP transport dial failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "UDPTransport.OpenSender",
		"local_addr":  conn.LocalAddr().String(),
		"remote_addr": conn.RemoteAddr().String(),
	}).Info("UDP sender opened")

	return &udpSender{conn: conn}, nil
}

// OpenReceiver binds a UDP socket on port and starts its read loop.
func (t *UDPTransport) OpenReceiver(port int) (interfaces.IReceiver, error) {
	address := net.JoinHostPort("", strconv.Itoa(port))

	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "UDPTransport.OpenReceiver",
			"address":  address,
			"error":    err.Error(),
		}).Error("Failed to create UDP listener")
		return nil, fmt.Errorf("UDP transport listen failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &udpReceiver{
		conn:        conn,
		ctx:         ctx,
		cancel:      cancel,
		bufferSize:  t.readBufferSize,
		readTimeout: t.readTimeout,
	}

	r.wg.Add(1)
	go r.processPackets()

	logrus.WithFields(logrus.Fields{
		"function":   "UDPTransport.OpenReceiver",
		"local_addr": conn.LocalAddr().String(),
	}).Info("UDP receiver listening")

	return r, nil
}

type udpSender struct {
	conn   net.Conn
	mu     sync.Mutex
	closed bool
}

func (s *udpSender) Send(address string, args []message.Argument) error {
	data, err := codec.Encode(address, args)
	if err != nil {
		return err
	}
	if err := limits.ValidatePacket(data); err != nil {
		return fmt.Errorf("send %s: %w", address, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("send %s: %w", address, err)
	}
	return nil
}

func (s *udpSender) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *udpSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

type udpReceiver struct {
	conn        net.PacketConn
	ctx         context.Context
	cancel      context.CancelFunc
	bufferSize  int
	readTimeout time.Duration
	wg          sync.WaitGroup

	mu      sync.RWMutex
	handler interfaces.PacketHandler

	closeOnce sync.Once
	closeErr  error
}

func (r *udpReceiver) OnPacket(handler interfaces.PacketHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

func (r *udpReceiver) LocalAddr() net.Addr {
	return r.conn.LocalAddr()
}

// Close stops the read loop and waits for it to exit. It must not be called
// from inside the packet handler.
func (r *udpReceiver) Close() error {
	r.closeOnce.Do(func() {
		r.cancel()
		r.closeErr = r.conn.Close()
		r.wg.Wait()

		logrus.WithFields(logrus.Fields{
			"function":   "udpReceiver.Close",
			"local_addr": r.conn.LocalAddr().String(),
		}).Info("UDP receiver closed")
	})
	return r.closeErr
}

// processPackets handles incoming packets until the receiver is closed.
func (r *udpReceiver) processPackets() {
	defer r.wg.Done()
	buffer := make([]byte, r.bufferSize)

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
			r.processIncomingPacket(buffer)
		}
	}
}

// processIncomingPacket reads, decodes and delivers a single datagram.
func (r *udpReceiver) processIncomingPacket(buffer []byte) {
	_ = r.conn.SetReadDeadline(time.Now().Add(r.readTimeout))

	n, addr, err := r.conn.ReadFrom(buffer)
	if err != nil {
		r.handleReadError(err)
		return
	}

	msgs, err := codec.Decode(buffer[:n])
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "udpReceiver.processIncomingPacket",
			"from":     addr.String(),
			"size":     n,
			"error":    err.Error(),
		}).Warn("Discarding undecodable packet")
		return
	}

	r.mu.RLock()
	handler := r.handler
	r.mu.RUnlock()
	if handler == nil {
		return
	}

	for _, msg := range msgs {
		handler(msg.Address, msg.Values)
	}
}

// handleReadError logs read errors other than deadline expiry and shutdown.
func (r *udpReceiver) handleReadError(err error) {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return
	}
	if r.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function":   "udpReceiver.handleReadError",
		"local_addr": r.conn.LocalAddr().String(),
		"error":      err.Error(),
	}).Warn("UDP read failed")
}
