package motor

import "fmt"

// MaxPower is the magnitude of a full-power command after normalization.
const MaxPower = 100

// LegacyRange is the device-native command range some drivers use; commands
// are rescaled from it onto [-MaxPower, MaxPower].
const LegacyRange = 127

// DefaultScale is the full-scale code of a 12-bit DAC.
const DefaultScale = 4095

// Rounding selects how the magnitude code is reduced to an integer.
type Rounding string

const (
	// RoundHalfUp rounds to the nearest code, halves away from zero.
	RoundHalfUp Rounding = "round"
	// Truncate drops the fraction, matching the legacy drivers bit for bit.
	Truncate Rounding = "truncate"
)

// Config holds the motor wiring and the command-to-code mapping.
type Config struct {
	ForwardPin  int      `yaml:"forward_pin"`
	BackwardPin int      `yaml:"backward_pin"`
	Scale       int      `yaml:"scale"`    // full-scale DAC code, zero drive
	Range       int      `yaml:"range"`    // 100, or 127 for rescaled commands
	Rounding    Rounding `yaml:"rounding"` // "round" or "truncate"
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Scale == 0 {
		c.Scale = DefaultScale
	}
	if c.Range == 0 {
		c.Range = MaxPower
	}
	if c.Rounding == "" {
		c.Rounding = RoundHalfUp
	}
	return c
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.ForwardPin < 0 || c.BackwardPin < 0 {
		return fmt.Errorf("%w: pins must not be negative (forward %d, backward %d)",
			ErrInvalidConfig, c.ForwardPin, c.BackwardPin)
	}
	if c.ForwardPin == c.BackwardPin {
		return fmt.Errorf("%w: forward and backward pin are both %d", ErrInvalidConfig, c.ForwardPin)
	}
	if c.Scale < 1 || c.Scale > DefaultScale {
		return fmt.Errorf("%w: scale %d outside 1..%d", ErrInvalidConfig, c.Scale, DefaultScale)
	}
	if c.Range != MaxPower && c.Range != LegacyRange {
		return fmt.Errorf("%w: range must be %d or %d, got %d", ErrInvalidConfig, MaxPower, LegacyRange, c.Range)
	}
	switch c.Rounding {
	case RoundHalfUp, Truncate:
	default:
		return fmt.Errorf("%w: unknown rounding %q", ErrInvalidConfig, c.Rounding)
	}
	return nil
}

// Normalize checks power against the configured range and maps it onto
// [-MaxPower, MaxPower], truncating toward zero.
func (c Config) Normalize(power int) (int, error) {
	if power < -c.Range || power > c.Range {
		return 0, fmt.Errorf("%w: power %d outside [%d, %d]", ErrInvalidCommand, power, -c.Range, c.Range)
	}
	if c.Range != MaxPower {
		power = power * MaxPower / c.Range
	}
	return power, nil
}

// Code returns the analog code for a normalized power. The mapping is
// inverted: zero power is full scale, full power is code 0.
func (c Config) Code(normalized int) int {
	p := normalized
	if p < 0 {
		p = -p
	}
	if p > MaxPower {
		p = MaxPower
	}
	n := c.Scale * (MaxPower - p)
	if c.Rounding == Truncate {
		return n / MaxPower
	}
	return (n + MaxPower/2) / MaxPower
}
