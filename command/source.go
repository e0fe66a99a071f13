package command

import (
	"fmt"

	"go.uber.org/multierr"
)

// DefaultStep is the jog step of keyboard and rotary sources.
const DefaultStep = 10

// Config lists the command sources to open.
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig holds configuration for one command source.
type SourceConfig struct {
	Type string `yaml:"type"` // "pipe", "serial", "keyboard", "rotary"
	Path string `yaml:"path"` // fifo, tty or input event device
	Baud int    `yaml:"baud"` // serial only
	Step int    `yaml:"step"` // jog step for keyboard and rotary

	// Rotary encoder lines
	Chip      string `yaml:"chip"`
	CLKPin    int    `yaml:"clk_pin"`
	DTPin     int    `yaml:"dt_pin"`
	ButtonPin int    `yaml:"button_pin"`
}

// New opens the source described by cfg.
func New(cfg SourceConfig) (Source, error) {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}

	switch cfg.Type {
	case "pipe":
		return NewPipe(cfg.Path)
	case "serial":
		return NewSerial(cfg.Path, cfg.Baud)
	case "keyboard":
		return NewKeyboard(cfg.Path, cfg.Step)
	case "rotary":
		return NewRotary(cfg)
	default:
		return nil, fmt.Errorf("unknown command source type %q", cfg.Type)
	}
}

// NewAll opens every configured source. On failure the sources opened so
// far are closed again.
func NewAll(cfg Config) ([]Source, error) {
	var sources []Source
	for i, sc := range cfg.Sources {
		s, err := New(sc)
		if err != nil {
			err = fmt.Errorf("command source %d (%s): %w", i, sc.Type, err)
			for _, opened := range sources {
				err = multierr.Append(err, opened.Close())
			}
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}
