//go:build !linux

package pin

// Line is a stub for non-linux platforms.
type Line struct{}

// NewLine returns ErrNotSupported on non-linux platforms.
func NewLine(chip string, offset int, activeLow bool) (*Line, error) {
	return nil, ErrNotSupported
}

func (l *Line) Set(value bool) error { return ErrNotSupported }
func (l *Line) Get() (bool, error)   { return false, ErrNotSupported }
func (l *Line) Close() error         { return nil }

// MemPin is a stub for non-linux platforms.
type MemPin struct{}

// NewMemPin returns ErrNotSupported on non-linux platforms.
func NewMemPin(offset int, activeLow bool) (*MemPin, error) {
	return nil, ErrNotSupported
}

func (m *MemPin) Set(value bool) error { return ErrNotSupported }
func (m *MemPin) Get() (bool, error)   { return false, ErrNotSupported }
func (m *MemPin) Close() error         { return nil }

// VattuPin is a stub for non-linux platforms.
type VattuPin struct{}

// NewVattuPin returns ErrNotSupported on non-linux platforms.
func NewVattuPin(offset int, activeLow bool) (*VattuPin, error) {
	return nil, ErrNotSupported
}

func (p *VattuPin) Set(value bool) error { return ErrNotSupported }
func (p *VattuPin) Get() (bool, error)   { return false, ErrNotSupported }
func (p *VattuPin) Close() error         { return nil }
