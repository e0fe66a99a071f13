// Package command parses motor commands and reads them from local input
// devices.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"motord/motor"
)

// ErrEmpty is returned by Parse for blank lines and comments.
var ErrEmpty = errors.New("empty command")

// Kind identifies the command type.
type Kind int

const (
	Move Kind = iota
	Stop
	Jog
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Stop:
		return "stop"
	case Jog:
		return "jog"
	default:
		return "unknown"
	}
}

// Command is a single request for the motor.
type Command struct {
	Kind   Kind
	Power  int    // Move
	Delta  int    // Jog
	Source string // where the command came from, for logging
}

func (c Command) String() string {
	switch c.Kind {
	case Move:
		return fmt.Sprintf("move %d", c.Power)
	case Jog:
		return fmt.Sprintf("jog %+d", c.Delta)
	default:
		return c.Kind.String()
	}
}

// Handler receives commands from a Source. The returned error is reported
// back to the sender where the source supports it.
type Handler func(Command) error

// Source produces commands.
type Source interface {
	// Run delivers commands to h until ctx is cancelled or the source
	// fails. Cancellation is not an error.
	Run(ctx context.Context, h Handler) error

	// Close releases the underlying device.
	Close() error
}

// Parse parses one command line.
//
//	move <power>   m <power>   <power>   - set signed power
//	stop           s           halt      - stop
//	jog <delta>    j <delta>             - change power by delta
//
// Lines starting with # are comments.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Command{}, ErrEmpty
	}

	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "stop", "s", "halt":
		return Command{Kind: Stop}, nil

	case "move", "m":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("%w: move requires one power value", motor.ErrInvalidCommand)
		}
		power, err := parseInt(parts[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: Move, Power: power}, nil

	case "jog", "j":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("%w: jog requires one delta value", motor.ErrInvalidCommand)
		}
		delta, err := parseInt(parts[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: Jog, Delta: delta}, nil

	default:
		if len(parts) == 1 {
			power, err := parseInt(parts[0])
			if err == nil {
				return Command{Kind: Move, Power: power}, nil
			}
			if _, ferr := strconv.ParseFloat(parts[0], 64); ferr == nil {
				return Command{}, err
			}
		}
		return Command{}, fmt.Errorf("%w: unknown command %q", motor.ErrInvalidCommand, cmd)
	}
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err == nil {
		return v, nil
	}
	if _, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return 0, fmt.Errorf("%w: %s is not an integer", motor.ErrInvalidCommand, s)
	}
	return 0, fmt.Errorf("%w: invalid number %q", motor.ErrInvalidCommand, s)
}
