//go:build linux

package indicator

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// GPIO implements Indicator using discrete GPIO LED pins: green while
// driving forward, yellow while driving backward, red on a fault.
type GPIO struct {
	hw        govattu.Vattu
	greenPin  *uint8
	yellowPin *uint8
	redPin    *uint8
}

// NewGPIO creates a new GPIO-based indicator.
func NewGPIO(greenPin, yellowPin, redPin *uint8) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	g := &GPIO{
		hw:        hw,
		greenPin:  greenPin,
		yellowPin: yellowPin,
		redPin:    redPin,
	}

	for _, pin := range []*uint8{greenPin, yellowPin, redPin} {
		if pin != nil {
			hw.PinMode(*pin, govattu.ALToutput)
			hw.PinClear(*pin)
		}
	}

	return g, nil
}

// Forward implements Indicator.Forward.
func (g *GPIO) Forward() {
	g.only(g.greenPin)
}

// Backward implements Indicator.Backward.
func (g *GPIO) Backward() {
	g.only(g.yellowPin)
}

// Stopped implements Indicator.Stopped.
func (g *GPIO) Stopped() {
	g.only(nil)
}

// Fault implements Indicator.Fault.
func (g *GPIO) Fault() {
	g.only(g.redPin)
}

// Shutdown implements Indicator.Shutdown.
func (g *GPIO) Shutdown() {
	g.only(nil)
}

// Release implements Indicator.Release.
func (g *GPIO) Release() error {
	g.only(nil)
	return g.hw.Close()
}

// only lights on, if configured, and clears every other pin.
func (g *GPIO) only(on *uint8) {
	for _, pin := range []*uint8{g.greenPin, g.yellowPin, g.redPin} {
		if pin != nil && pin != on {
			g.hw.PinClear(*pin)
		}
	}
	if on != nil {
		g.hw.PinSet(*on)
	}
}
