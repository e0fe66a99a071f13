package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is used when a serial source has no baud rate configured.
const DefaultBaud = 115200

// Serial reads command lines from a serial console and answers each one
// with "ok" or "err <reason>".
type Serial struct {
	port   io.ReadWriteCloser
	device string
}

// NewSerial opens device at baud.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Second,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return &Serial{port: port, device: device}, nil
}

// Run implements Source.Run.
func (s *Serial) Run(ctx context.Context, h Handler) error {
	var lines lineBuffer
	buf := make([]byte, 64)
	source := "serial:" + s.device

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := s.port.Read(buf)
		if err != nil && err != io.EOF {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", s.device, err)
		}
		if n == 0 {
			continue // read timeout
		}

		lines.feed(buf[:n], func(line string) {
			reply := "ok\r\n"
			if err := dispatch(source, line, h); err != nil {
				reply = fmt.Sprintf("err %v\r\n", err)
			}
			io.WriteString(s.port, reply)
		})
	}
}

// Close implements Source.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
