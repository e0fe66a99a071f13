// Package indicator shows the motor state on status lights.
package indicator

import "motord/motor"

// Indicator is the interface for status indicator implementations (LEDs,
// neopixels).
type Indicator interface {
	// Forward shows the motor driving forward.
	Forward()

	// Backward shows the motor driving backward.
	Backward()

	// Stopped shows the motor de-energized.
	Stopped()

	// Fault shows a hardware write failure.
	Fault()

	// Shutdown shows the daemon going down.
	Shutdown()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pins (nil = not configured)
	GreenPin  *uint8 `yaml:"green_pin"`
	YellowPin *uint8 `yaml:"yellow_pin"`
	RedPin    *uint8 `yaml:"red_pin"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if both GPIO and Neopixel are configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	if cfg.GreenPin != nil || cfg.YellowPin != nil || cfg.RedPin != nil {
		gpio, err := NewGPIO(cfg.GreenPin, cfg.YellowPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe)
		if err != nil {
			for _, ind := range indicators {
				ind.Release()
			}
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	if len(indicators) == 0 {
		return &Noop{}, nil
	}
	if len(indicators) == 1 {
		return indicators[0], nil
	}
	return &Multi{indicators: indicators}, nil
}

// Show switches ind to the state for d.
func Show(ind Indicator, d motor.Direction) {
	switch d {
	case motor.Forward:
		ind.Forward()
	case motor.Backward:
		ind.Backward()
	default:
		ind.Stopped()
	}
}
