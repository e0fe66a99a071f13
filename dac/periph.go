package dac

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// OpenPeriph opens an MCP4725 on the named periph I2C bus. An empty bus
// selects the first one available.
func OpenPeriph(bus string, addr uint16) (*MCP4725, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", bus, err)
	}

	d := NewMCP4725(&i2c.Dev{Bus: b, Addr: addr})
	d.closer = b

	// Probe the device; the reading itself is discarded.
	if _, err := d.ReadBack(); err != nil {
		b.Close()
		return nil, fmt.Errorf("%w at %#02x: %w", ErrConnectionFailed, addr, err)
	}
	return d, nil
}
