//go:build linux

package dac

import (
	"fmt"

	i2c "github.com/d2r2/go-i2c"
	logger "github.com/d2r2/go-logger"
	log "github.com/sirupsen/logrus"
)

// d2r2Conn adapts a d2r2 I2C handle to Conn.
type d2r2Conn struct {
	bus *i2c.I2C
}

func (c *d2r2Conn) Tx(w, r []byte) error {
	if len(w) > 0 {
		if _, err := c.bus.WriteBytes(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if _, err := c.bus.ReadBytes(r); err != nil {
			return err
		}
	}
	return nil
}

func (c *d2r2Conn) Close() error {
	return c.bus.Close()
}

// OpenD2R2 opens an MCP4725 on /dev/i2c-<bus> through the d2r2 driver.
func OpenD2R2(bus int, addr uint16) (*MCP4725, error) {
	// The driver logs every transfer at debug level.
	if err := logger.ChangePackageLogLevel("i2c", logger.InfoLevel); err != nil {
		log.WithError(err).Debug("Lower i2c driver log level")
	}

	h, err := i2c.NewI2C(uint8(addr), bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c-%d: %w", bus, err)
	}

	c := &d2r2Conn{bus: h}
	d := NewMCP4725(c)
	d.closer = c

	if _, err := d.ReadBack(); err != nil {
		c.Close()
		return nil, fmt.Errorf("%w at %#02x: %w", ErrConnectionFailed, addr, err)
	}
	return d, nil
}
