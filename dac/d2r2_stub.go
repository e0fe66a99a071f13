//go:build !linux

package dac

import "errors"

// ErrNotSupported is returned for buses unavailable on this platform.
var ErrNotSupported = errors.New("d2r2 i2c not supported on this platform")

// OpenD2R2 returns ErrNotSupported on non-linux platforms.
func OpenD2R2(bus int, addr uint16) (*MCP4725, error) {
	return nil, ErrNotSupported
}
