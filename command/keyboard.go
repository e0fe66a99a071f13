package command

import (
	"context"
	"fmt"

	"github.com/kenshaw/evdev"
	log "github.com/sirupsen/logrus"
)

// Keyboard jogs the motor from an input event device: Up or W adds one
// step, Down or S removes one, Space or Escape stops.
type Keyboard struct {
	device *evdev.Evdev
	step   int
}

// NewKeyboard opens the input event device at path.
func NewKeyboard(path string, step int) (*Keyboard, error) {
	dev, err := evdev.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", path, err)
	}

	log.Printf("Opened keyboard device: %s", dev.Name())
	log.Printf("Vendor: 0x%04x, Product: 0x%04x", dev.ID().Vendor, dev.ID().Product)

	return &Keyboard{device: dev, step: step}, nil
}

// Run implements Source.Run.
func (k *Keyboard) Run(ctx context.Context, h Handler) error {
	ch := k.device.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-ch:
			if event == nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("keyboard device closed")
			}

			if _, ok := event.Type.(evdev.KeyType); !ok || event.Value != 1 {
				continue
			}

			cmd, ok := k.keyCommand(evdev.KeyType(event.Code))
			if !ok {
				continue
			}
			cmd.Source = "keyboard"
			if err := h(cmd); err != nil {
				log.WithField("source", cmd.Source).Warnf("%s: %v", cmd, err)
			}
		}
	}
}

func (k *Keyboard) keyCommand(key evdev.KeyType) (Command, bool) {
	switch key {
	case evdev.KeyUp, evdev.KeyW:
		return Command{Kind: Jog, Delta: k.step}, true
	case evdev.KeyDown, evdev.KeyS:
		return Command{Kind: Jog, Delta: -k.step}, true
	case evdev.KeySpace, evdev.KeyEscape:
		return Command{Kind: Stop}, true
	default:
		return Command{}, false
	}
}

// Close implements Source.Close.
func (k *Keyboard) Close() error {
	if k.device == nil {
		return nil
	}
	return k.device.Close()
}
