// Package pin provides the direction enable lines of the motor driver.
package pin

import (
	"errors"
	"fmt"
)

// Consumer is the label attached to requested lines.
const Consumer = "motord"

var (
	// ErrNotSupported is returned for backends unavailable on this platform.
	ErrNotSupported = errors.New("gpio backend not supported on this platform")

	// ErrClosed is returned when writing to a released pin.
	ErrClosed = errors.New("pin closed")
)

// Output is a single digital output line.
type Output interface {
	// Set drives the line active (true) or inactive (false).
	Set(value bool) error

	// Get returns the logical level of the line.
	Get() (bool, error)

	// Close releases the line.
	Close() error
}

// Config holds configuration shared by both enable lines.
type Config struct {
	Type      string `yaml:"type"`       // "gpiocdev", "gpiomem", "vattu", "sim"
	Chip      string `yaml:"chip"`       // gpiocdev chip, default gpiochip0
	ActiveLow bool   `yaml:"active_low"` // line is active when driven low
}

// New requests the line at offset using the configured backend. The line is
// inactive on return.
func New(cfg Config, offset int) (Output, error) {
	switch cfg.Type {
	case "", "gpiocdev":
		l, err := NewLine(cfg.Chip, offset, cfg.ActiveLow)
		if err != nil {
			return nil, err
		}
		return l, nil
	case "gpiomem":
		p, err := NewMemPin(offset, cfg.ActiveLow)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "vattu":
		p, err := NewVattuPin(offset, cfg.ActiveLow)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "sim":
		return NewSim(offset), nil
	default:
		return nil, fmt.Errorf("unknown pin type %q", cfg.Type)
	}
}
