package dac

import (
	"fmt"
	"io"
	"time"
)

// DefaultAddress is the MCP4725 address with A0 tied low.
const DefaultAddress uint16 = 0x60

// FullScale is the largest MCP4725 code.
const FullScale = 4095

const (
	minAddress uint16 = 0x60
	maxAddress uint16 = 0x67

	cmdWriteDAC       = 0x40
	cmdWriteDACEEPROM = 0x60

	statusReady = 0x80

	eepromPoll    = 2 * time.Millisecond
	eepromTimeout = 100 * time.Millisecond
)

// Conn is the I2C transaction the driver needs. periph's i2c.Dev
// satisfies it.
type Conn interface {
	Tx(w, r []byte) error
}

// Reading is the decoded MCP4725 read-back.
type Reading struct {
	Ready           bool // no EEPROM write in progress
	PowerOnReset    bool
	PowerDown       int
	Code            int
	EEPROMPowerDown int
	EEPROMCode      int
}

// MCP4725 drives a Microchip MCP4725 12-bit DAC.
type MCP4725 struct {
	c      Conn
	closer io.Closer
	closed bool

	poll    time.Duration
	timeout time.Duration
}

// NewMCP4725 returns a driver talking over c.
func NewMCP4725(c Conn) *MCP4725 {
	return &MCP4725{
		c:       c,
		poll:    eepromPoll,
		timeout: eepromTimeout,
	}
}

// Write implements Output.Write.
func (d *MCP4725) Write(code int) error {
	return d.write(cmdWriteDAC, code)
}

// WritePersist implements Output.WritePersist. It blocks until the EEPROM
// write cycle finishes.
func (d *MCP4725) WritePersist(code int) error {
	if err := d.write(cmdWriteDACEEPROM, code); err != nil {
		return err
	}

	deadline := time.Now().Add(d.timeout)
	for {
		r, err := d.ReadBack()
		if err != nil {
			return err
		}
		if r.Ready {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrEEPROMTimeout
		}
		time.Sleep(d.poll)
	}
}

// FullScale implements Output.FullScale.
func (d *MCP4725) FullScale() int {
	return FullScale
}

// ReadBack reads the DAC register and EEPROM contents.
func (d *MCP4725) ReadBack() (Reading, error) {
	if d.closed {
		return Reading{}, ErrClosed
	}
	b := make([]byte, 5)
	if err := d.c.Tx(nil, b); err != nil {
		return Reading{}, fmt.Errorf("mcp4725 read: %w", err)
	}
	return Reading{
		Ready:           b[0]&statusReady != 0,
		PowerOnReset:    b[0]&0x40 != 0,
		PowerDown:       int(b[0]>>1) & 0x03,
		Code:            int(b[1])<<4 | int(b[2])>>4,
		EEPROMPowerDown: int(b[3]>>5) & 0x03,
		EEPROMCode:      int(b[3]&0x0F)<<8 | int(b[4]),
	}, nil
}

// Close implements Output.Close. It releases the bus, if owned.
func (d *MCP4725) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

func (d *MCP4725) write(cmd byte, code int) error {
	if d.closed {
		return ErrClosed
	}
	if code < 0 || code > FullScale {
		return fmt.Errorf("%w: %d", ErrCodeRange, code)
	}
	w := []byte{cmd, byte(code >> 4), byte(code&0x0F) << 4}
	if err := d.c.Tx(w, nil); err != nil {
		return fmt.Errorf("mcp4725 write %d: %w", code, err)
	}
	return nil
}
