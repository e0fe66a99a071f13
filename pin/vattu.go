//go:build linux

package pin

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// maxVattuPin is the highest BCM283x GPIO number.
const maxVattuPin = 53

// VattuPin implements Output with direct BCM283x register access.
// The hardware level is not read back; Get reports the latched value.
type VattuPin struct {
	hw        govattu.Vattu
	pin       uint8
	activeLow bool
	value     bool
	closed    bool
}

// NewVattuPin configures offset as an output, initially inactive.
func NewVattuPin(offset int, activeLow bool) (*VattuPin, error) {
	if offset < 0 || offset > maxVattuPin {
		return nil, fmt.Errorf("vattu pin %d out of range", offset)
	}

	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	p := &VattuPin{
		hw:        hw,
		pin:       uint8(offset),
		activeLow: activeLow,
	}
	p.write(false)
	hw.PinMode(p.pin, govattu.ALToutput)
	return p, nil
}

// Set implements Output.Set.
func (p *VattuPin) Set(value bool) error {
	if p.closed {
		return ErrClosed
	}
	p.write(value)
	return nil
}

// Get implements Output.Get.
func (p *VattuPin) Get() (bool, error) {
	if p.closed {
		return false, ErrClosed
	}
	return p.value, nil
}

// Close implements Output.Close.
func (p *VattuPin) Close() error {
	if p.closed {
		return nil
	}
	p.write(false)
	p.closed = true
	return p.hw.Close()
}

func (p *VattuPin) write(value bool) {
	if value != p.activeLow {
		p.hw.PinSet(p.pin)
	} else {
		p.hw.PinClear(p.pin)
	}
	p.value = value
}
