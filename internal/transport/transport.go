// Package transport carries already-framed Modbus byte frames across a
// serial line or a TCP socket for the modbusd and modbusctl demo binaries.
// It owns no protocol knowledge -- framing and parsing live in the
// top-level engine -- it only knows how to recognize where one frame ends
// on the wire.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/goburrow/serial"

	"github.com/lightmodbus-go/modbus/internal/config"
)

// Frame is a transport: it reads exactly one wire frame and writes exactly
// one wire frame at a time.
type Frame interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
	Close() error
}

// Open creates the Frame transport described by cfg.
func Open(cfg config.Config) (Frame, error) {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	switch cfg.Kind {
	case "serial":
		port, err := serial.Open(&serial.Config{
			Address:  cfg.Endpoint,
			BaudRate: cfg.BaudRate,
			DataBits: cfg.DataBits,
			Parity:   cfg.Parity,
			StopBits: cfg.StopBits,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		return &rtuFrame{port: port, timeout: timeout}, nil
	case "tcp":
		conn, err := net.DialTimeout("tcp", cfg.Endpoint, timeout)
		if err != nil {
			return nil, err
		}
		return &tcpFrame{conn: conn, timeout: timeout}, nil
	}
	return nil, config.ErrInvalidParameter
}

// rtuFrame delimits RTU frames by inter-character silence: whatever one
// Read of the port returns (up to 256 bytes) is taken as the frame, and a
// read error, including a timeout, yields no frame. This
// is the same heuristic goburrow/serial-based RTU masters commonly use in
// place of the true 3.5-character-time silence the standard specifies.
type rtuFrame struct {
	port    io.ReadWriteCloser
	timeout time.Duration
}

func (r *rtuFrame) ReadFrame() ([]byte, error) {
	buf := make([]byte, 256)
	n, err := r.port.Read(buf)
	if err != nil {
		return nil, err
	}
	if n < 4 {
		return nil, fmt.Errorf("modbus: short rtu read (%d bytes)", n)
	}
	return buf[:n], nil
}

func (r *rtuFrame) WriteFrame(frame []byte) error {
	_, err := r.port.Write(frame)
	return err
}

func (r *rtuFrame) Close() error { return r.port.Close() }

// tcpFrame delimits TCP frames using the MBAP header's own length field:
// read the fixed 7-byte header, then read exactly as many more bytes as
// the header's length field promises.
type tcpFrame struct {
	conn    net.Conn
	timeout time.Duration
}

func (t *tcpFrame) ReadFrame() ([]byte, error) {
	if t.timeout > 0 {
		t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	}
	header := make([]byte, 7)
	if _, err := io.ReadFull(t.conn, header); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(header[4:6])
	if length < 1 {
		return nil, fmt.Errorf("modbus: mbap length field is zero")
	}
	rest := make([]byte, length-1)
	if _, err := io.ReadFull(t.conn, rest); err != nil {
		return nil, err
	}
	return append(header, rest...), nil
}

func (t *tcpFrame) WriteFrame(frame []byte) error {
	_, err := t.conn.Write(frame)
	return err
}

func (t *tcpFrame) Close() error { return t.conn.Close() }

// NewTCPConnFrame wraps an already-accepted net.Conn (from a server
// Listener, as opposed to Open's own outbound Dial) in a Frame.
func NewTCPConnFrame(conn net.Conn, timeout time.Duration) Frame {
	return &tcpFrame{conn: conn, timeout: timeout}
}
