package udp

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Config configures the UDP syslog listener.
type Config struct {
	Listen      string
	BufferSize  int
	ReadTimeout time.Duration
}

// Listener receives one panel datagram per call.
type Listener struct {
	conn        *net.UDPConn
	bufSize     int
	readTimeout time.Duration
}

// NewListener binds the UDP socket.
func NewListener(cfg Config) (*Listener, error) {
	if cfg.Listen == "" {
		cfg.Listen = ":5140"
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 2048
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 1 * time.Second
	}

	addr, err := net.ResolveUDPAddr("udp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("resolve listen address %q: %w", cfg.Listen, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind udp %q: %w", cfg.Listen, err)
	}

	return &Listener{
		conn:        conn,
		bufSize:     cfg.BufferSize,
		readTimeout: cfg.ReadTimeout,
	}, nil
}

// Receive reads one datagram. It returns (nil, nil) when the read timeout
// elapses with no traffic so the caller can check its context and retry.
func (l *Listener) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
		return nil, err
	}

	buf := make([]byte, l.bufSize)
	n, _, err := l.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil
		}
		return nil, err
	}
	return buf[:n], nil
}

// Addr reports the bound address, useful when listening on port 0.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Close closes the socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}
