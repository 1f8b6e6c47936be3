// Package phytron implements the communication core for Phytron MCC-2 and
// phyMOTION stepper motor controllers: the ASCII command codec, a per-axis
// parameter cache and the motion/fault state derivation, over a shared
// serial or TCP link.
package phytron

import (
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

// ControllerLink is the shared transport to one controller unit. A link
// carries no request identifiers, so responses cannot be demultiplexed:
// implementations allow exactly one exchange in flight and serialize all
// callers. A transport failure latches the link into a fault state visible
// to every axis using it; further exchanges fail with ErrLinkFault until
// ClearFault is called after a reconnect.
type ControllerLink interface {
	// Exchange frames cmd, sends it and blocks for the response payload.
	// A rejected command yields the NotAcknowledged sentinel, not an error.
	Exchange(ctx context.Context, cmd string) (string, error)
	Faulted() bool
	ClearFault()
	Close() error
}

// SerialLinkConfig configures a serial controller link.
type SerialLinkConfig struct {
	// Path to the /dev/ttyXXXX file.
	Path string `json:"path" yaml:"path"`
	// BaudRate of the controller, 57600 by default.
	BaudRate uint `json:"baud_rate,omitempty" yaml:"baud_rate,omitempty"`

	// TestPort replaces the serial port, for test use only.
	TestPort io.ReadWriteCloser `json:"-" yaml:"-"`
}

// SerialLink exchanges STX/ETX framed commands over a serial port. The port
// is owned exclusively for the lifetime of the link.
type SerialLink struct {
	mu      sync.Mutex
	port    io.ReadWriteCloser
	path    string
	logger  golog.Logger
	faulted bool
}

// NewSerialLink opens the serial port and returns a link ready for exchanges.
func NewSerialLink(cfg SerialLinkConfig, logger golog.Logger) (*SerialLink, error) {
	l := &SerialLink{path: cfg.Path, logger: logger}

	if cfg.TestPort != nil {
		l.port = cfg.TestPort
		return l, nil
	}

	if cfg.Path == "" {
		return nil, errors.New("serial path required")
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = 57600
	}
	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.Path,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", cfg.Path)
	}
	l.port = port
	logger.Infof("connected to %s", cfg.Path)
	return l, nil
}

// Exchange implements ControllerLink. It writes one framed request and reads
// until the end-of-text marker arrives.
func (l *SerialLink) Exchange(ctx context.Context, cmd string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.faulted {
		return "", ErrLinkFault
	}

	framed := stx + cmd + etx
	l.logger.Debugf("write command: %q", framed)
	if _, err := l.port.Write([]byte(framed)); err != nil {
		l.faulted = true
		return "", errors.Wrapf(err, "write to %s failed", l.path)
	}

	var resp strings.Builder
	buf := make([]byte, 256)
	for !strings.Contains(resp.String(), etx) {
		n, err := l.port.Read(buf)
		if err != nil {
			l.faulted = true
			return "", errors.Wrapf(err, "read from %s failed", l.path)
		}
		resp.Write(buf[:n])
	}
	l.logger.Debugf("read response: %q", resp.String())
	return parseFrame(resp.String()), nil
}

// Faulted reports whether a transport failure latched the link.
func (l *SerialLink) Faulted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.faulted
}

// ClearFault unlatches the link after the transport has been restored.
func (l *SerialLink) ClearFault() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faulted = false
}

// Close closes the serial port.
func (l *SerialLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port.Close()
}

// TCPLinkConfig configures a network controller link.
type TCPLinkConfig struct {
	// Address is the host:port of the controller's terminal server.
	Address string `json:"address" yaml:"address"`
	// Suffix is appended to every request; the controller sends one reply
	// buffer per request. Defaults to "\r\n".
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	// DialTimeout bounds the initial connect, 5s by default.
	DialTimeout Duration `json:"dial_timeout,omitempty" yaml:"dial_timeout,omitempty"`

	// TestConn replaces the network connection, for test use only.
	TestConn io.ReadWriteCloser `json:"-" yaml:"-"`
}

// TCPLink exchanges suffix-terminated commands over a TCP connection, one
// reply buffer per request.
type TCPLink struct {
	mu      sync.Mutex
	conn    io.ReadWriteCloser
	addr    string
	suffix  string
	logger  golog.Logger
	faulted bool
}

// NewTCPLink connects to the controller's terminal server.
func NewTCPLink(cfg TCPLinkConfig, logger golog.Logger) (*TCPLink, error) {
	suffix := cfg.Suffix
	if suffix == "" {
		suffix = "\r\n"
	}
	l := &TCPLink{addr: cfg.Address, suffix: suffix, logger: logger}

	if cfg.TestConn != nil {
		l.conn = cfg.TestConn
		return l, nil
	}

	if cfg.Address == "" {
		return nil, errors.New("tcp address required")
	}
	timeout := time.Duration(cfg.DialTimeout)
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	conn, err := net.DialTimeout("tcp", cfg.Address, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", cfg.Address)
	}
	l.conn = conn
	logger.Infof("connected to %s", cfg.Address)
	return l, nil
}

// Exchange implements ControllerLink.
func (l *TCPLink) Exchange(ctx context.Context, cmd string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.faulted {
		return "", ErrLinkFault
	}

	if _, err := l.conn.Write([]byte(cmd + l.suffix)); err != nil {
		l.faulted = true
		return "", errors.Wrapf(err, "write to %s failed", l.addr)
	}
	buf := make([]byte, 1024)
	n, err := l.conn.Read(buf)
	if err != nil {
		l.faulted = true
		return "", errors.Wrapf(err, "read from %s failed", l.addr)
	}
	return parseFrame(string(buf[:n])), nil
}

// Faulted reports whether a transport failure latched the link.
func (l *TCPLink) Faulted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.faulted
}

// ClearFault unlatches the link after the transport has been restored.
func (l *TCPLink) ClearFault() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faulted = false
}

// Close closes the connection.
func (l *TCPLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}

// parseFrame strips the response framing. A frame without the ACK marker is
// a rejection and maps to the NotAcknowledged sentinel; everything between
// the leading markers and the end-of-text marker is the payload. Batched
// responses keep their inner ACK separators.
func parseFrame(raw string) string {
	if !strings.Contains(raw, ack) {
		return NotAcknowledged
	}
	if i := strings.Index(raw, etx); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimLeft(raw, stx)
	raw = strings.TrimLeft(raw, ack)
	return strings.TrimRight(raw, "\r\n")
}
