//go:build linux

package pin

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Line implements Output on a GPIO character device line.
type Line struct {
	line *gpiocdev.Line
}

// NewLine requests offset on chip as an output, initially inactive.
func NewLine(chip string, offset int, activeLow bool) (*Line, error) {
	if chip == "" {
		chip = "gpiochip0"
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(Consumer),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return &Line{line: l}, nil
}

// Set implements Output.Set.
func (l *Line) Set(value bool) error {
	v := 0
	if value {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set line %d: %w", l.line.Offset(), err)
	}
	return nil
}

// Get implements Output.Get.
func (l *Line) Get() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("get line %d: %w", l.line.Offset(), err)
	}
	return v == 1, nil
}

// Close implements Output.Close.
func (l *Line) Close() error {
	return l.line.Close()
}
