//go:build !linux

package indicator

import "errors"

// ErrNotSupported is returned for indicators unavailable on this platform.
var ErrNotSupported = errors.New("gpio indicator not supported on this platform")

// GPIO is a stub for non-linux platforms.
type GPIO struct{}

// NewGPIO returns ErrNotSupported on non-linux platforms.
func NewGPIO(greenPin, yellowPin, redPin *uint8) (*GPIO, error) {
	return nil, ErrNotSupported
}

func (g *GPIO) Forward()       {}
func (g *GPIO) Backward()      {}
func (g *GPIO) Stopped()       {}
func (g *GPIO) Fault()         {}
func (g *GPIO) Shutdown()      {}
func (g *GPIO) Release() error { return nil }
