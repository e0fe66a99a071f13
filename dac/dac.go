// Package dac provides the analog magnitude output of the motor driver.
package dac

import (
	"errors"
	"fmt"
)

var (
	// ErrCodeRange is returned for codes the device cannot represent.
	ErrCodeRange = errors.New("dac code out of range")

	// ErrConnectionFailed is returned when the device does not answer.
	ErrConnectionFailed = errors.New("failed to connect to dac")

	// ErrEEPROMTimeout is returned when a persisted write does not complete.
	ErrEEPROMTimeout = errors.New("dac eeprom write timed out")

	// ErrClosed is returned when writing to a released device.
	ErrClosed = errors.New("dac closed")
)

// Output is an analog output addressed by integer code.
type Output interface {
	Write(code int) error

	// WritePersist writes code and stores it in non-volatile memory, so the
	// device powers up with it.
	WritePersist(code int) error

	// FullScale returns the largest accepted code.
	FullScale() int

	Close() error
}

// Config holds configuration for the analog output.
type Config struct {
	Type      string `yaml:"type" env:"TYPE"`             // "periph", "d2r2", "sim"
	Bus       string `yaml:"bus" env:"BUS"`               // periph bus name, e.g. "1" or "/dev/i2c-1"
	BusNumber int    `yaml:"bus_number" env:"BUS_NUMBER"` // d2r2 bus number
	Address   uint16 `yaml:"address" env:"ADDRESS"`       // I2C address, default 0x60
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Type == "" {
		c.Type = "periph"
	}
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.BusNumber == 0 {
		c.BusNumber = 1
	}
	return c
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.Address < minAddress || c.Address > maxAddress {
		return fmt.Errorf("dac address %#02x outside %#02x-%#02x", c.Address, minAddress, maxAddress)
	}
	switch c.Type {
	case "periph", "d2r2", "sim":
	default:
		return fmt.Errorf("unknown dac type %q", c.Type)
	}
	return nil
}

// New opens the analog output described by cfg.
func New(cfg Config) (Output, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "d2r2":
		d, err := OpenD2R2(cfg.BusNumber, cfg.Address)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "sim":
		return NewSim(FullScale), nil
	default:
		d, err := OpenPeriph(cfg.Bus, cfg.Address)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
