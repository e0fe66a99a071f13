//go:build linux

package pin

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"
)

// The memory map is process wide; it is opened by the first MemPin and
// closed with the last.
var (
	memMu    sync.Mutex
	memUsers int
)

// MemPin implements Output through the BCM283x memory-mapped GPIO block.
type MemPin struct {
	pin       *gpio.Pin
	activeLow bool
	closed    bool
}

// NewMemPin configures offset as an output, initially inactive.
func NewMemPin(offset int, activeLow bool) (*MemPin, error) {
	memMu.Lock()
	defer memMu.Unlock()

	if memUsers == 0 {
		if err := gpio.Open(); err != nil {
			return nil, fmt.Errorf("open gpiomem: %w", err)
		}
	}
	memUsers++

	m := &MemPin{
		pin:       gpio.NewPin(offset),
		activeLow: activeLow,
	}
	m.write(false)
	m.pin.Output()
	return m, nil
}

// Set implements Output.Set.
func (m *MemPin) Set(value bool) error {
	if m.closed {
		return ErrClosed
	}
	m.write(value)
	return nil
}

// Get implements Output.Get.
func (m *MemPin) Get() (bool, error) {
	if m.closed {
		return false, ErrClosed
	}
	return bool(m.pin.Read()) != m.activeLow, nil
}

// Close implements Output.Close. The line is left driven inactive.
func (m *MemPin) Close() error {
	if m.closed {
		return nil
	}
	m.write(false)
	m.closed = true

	memMu.Lock()
	defer memMu.Unlock()
	memUsers--
	if memUsers == 0 {
		return gpio.Close()
	}
	return nil
}

func (m *MemPin) write(value bool) {
	m.pin.Write(gpio.Level(value != m.activeLow))
}
