//go:build !linux

package command

import (
	"context"
	"errors"
)

// ErrNotSupported is returned for sources unavailable on this platform.
var ErrNotSupported = errors.New("rotary encoder not supported on this platform")

// Rotary is a stub for non-linux platforms.
type Rotary struct{}

// NewRotary returns ErrNotSupported on non-linux platforms.
func NewRotary(cfg SourceConfig) (*Rotary, error) {
	return nil, ErrNotSupported
}

func (r *Rotary) Run(ctx context.Context, h Handler) error { return ErrNotSupported }
func (r *Rotary) Close() error                             { return nil }
