package motor

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// DigitalOutput is one direction enable line of the H-bridge.
type DigitalOutput interface {
	Set(value bool) error
	Get() (bool, error)
}

// AnalogOutput is the magnitude sink, usually a DAC.
type AnalogOutput interface {
	Write(code int) error

	// WritePersist writes code and asks the device to keep it in its
	// non-volatile memory.
	WritePersist(code int) error
}

// State is a snapshot of the controller and its outputs.
type State struct {
	Direction Direction `json:"direction"`
	Forward   bool      `json:"forward"`
	Backward  bool      `json:"backward"`
	Code      int       `json:"code"`
	Percent   int       `json:"percent"`
}

// Controller drives a single motor through two enable lines and one analog
// magnitude output.
//
// A Controller is not safe for concurrent use; callers serialize Move, Stop
// and Close.
type Controller struct {
	cfg       Config
	forward   DigitalOutput
	backward  DigitalOutput
	magnitude AnalogOutput

	direction   Direction
	lastCode    int
	lastPercent int
	closed      bool

	log *log.Entry
}

// New takes ownership of the outputs, de-energizes both enable lines and
// writes the neutral code.
func New(cfg Config, forward, backward DigitalOutput, magnitude AnalogOutput) (*Controller, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if forward == nil || backward == nil || magnitude == nil {
		return nil, fmt.Errorf("%w: missing output", ErrInvalidConfig)
	}

	c := &Controller{
		cfg:       cfg,
		forward:   forward,
		backward:  backward,
		magnitude: magnitude,
		direction: Stopped,
		lastCode:  -1,
		log: log.WithFields(log.Fields{
			"forward_pin":  cfg.ForwardPin,
			"backward_pin": cfg.BackwardPin,
		}),
	}

	if err := multierr.Append(c.deenergize()); err != nil {
		return nil, err
	}
	if err := c.write(0); err != nil {
		return nil, err
	}
	return c, nil
}

// Move applies a signed power command. Positive drives forward, negative
// backward and zero stops. Reversals always pass through a full stop.
func (c *Controller) Move(power int) error {
	if c.closed {
		return ErrClosed
	}
	p, err := c.cfg.Normalize(power)
	if err != nil {
		return err
	}

	// direction follows the command's sign; a rescaled magnitude may be 0
	switch {
	case power > 0:
		return c.drive(Forward, p)
	case power < 0:
		return c.drive(Backward, p)
	default:
		return c.stop()
	}
}

// Stop is Move(0).
func (c *Controller) Stop() error {
	if c.closed {
		return ErrClosed
	}
	return c.stop()
}

// Close stops the motor, persists the neutral code in the device and
// releases the outputs. Every step runs even if an earlier one fails.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs error
	if err := c.stop(); err != nil {
		errs = multierr.Append(errs, err)
	}

	neutral := c.cfg.Code(0)
	if err := c.magnitude.WritePersist(neutral); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("persist neutral code: %w", err))
	} else {
		c.lastCode = neutral
		c.lastPercent = MaxPower
	}

	for _, out := range []any{c.forward, c.backward, c.magnitude} {
		if cl, ok := out.(io.Closer); ok {
			errs = multierr.Append(errs, cl.Close())
		}
	}

	if errs != nil {
		c.log.WithError(errs).Warn("Motor shutdown incomplete")
		return fmt.Errorf("%w: %w", ErrShutdownWrite, errs)
	}
	c.log.Info("Motor shut down")
	return nil
}

// Direction returns the last confirmed direction.
func (c *Controller) Direction() Direction {
	return c.direction
}

// LastCode returns the last code accepted by the analog output, or -1 if
// none was.
func (c *Controller) LastCode() int {
	return c.lastCode
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State reads back both enable lines.
func (c *Controller) State() (State, error) {
	fwd, err := c.forward.Get()
	if err != nil {
		return State{}, fmt.Errorf("read forward output: %w", err)
	}
	bwd, err := c.backward.Get()
	if err != nil {
		return State{}, fmt.Errorf("read backward output: %w", err)
	}
	return State{
		Direction: c.direction,
		Forward:   fwd,
		Backward:  bwd,
		Code:      c.lastCode,
		Percent:   c.lastPercent,
	}, nil
}

func (c *Controller) drive(dir Direction, p int) error {
	if c.direction != dir {
		if c.direction != Stopped {
			if err := c.stop(); err != nil {
				return err
			}
		}

		out := c.output(dir)
		if err := out.Set(true); err != nil {
			// the line may or may not have latched
			_ = out.Set(false)
			c.log.WithError(err).Errorf("Energize %s failed", dir)
			return fmt.Errorf("%w: %s output: %w", ErrHardwareWrite, dir, err)
		}
		c.log.Debugf("Direction %s -> %s", c.direction, dir)
		c.direction = dir
	}
	return c.write(p)
}

func (c *Controller) stop() error {
	if c.direction == Stopped && c.lastCode == c.cfg.Code(0) {
		return nil
	}

	codeErr := c.write(0)
	fwdErr, bwdErr := c.deenergize()

	// Only the active line decides the direction; the other one is
	// already low.
	activeErr := fwdErr
	if c.direction == Backward {
		activeErr = bwdErr
	}
	if c.direction != Stopped && activeErr == nil {
		c.log.Debugf("Direction %s -> %s", c.direction, Stopped)
		c.direction = Stopped
	}
	return multierr.Combine(fwdErr, bwdErr, codeErr)
}

// deenergize drives both lines low, attempting the second even when the
// first fails.
func (c *Controller) deenergize() (fwdErr, bwdErr error) {
	if err := c.forward.Set(false); err != nil {
		fwdErr = fmt.Errorf("%w: forward output: %w", ErrHardwareWrite, err)
	}
	if err := c.backward.Set(false); err != nil {
		bwdErr = fmt.Errorf("%w: backward output: %w", ErrHardwareWrite, err)
	}
	if errs := multierr.Append(fwdErr, bwdErr); errs != nil {
		c.log.WithError(errs).Error("De-energize failed")
	}
	return fwdErr, bwdErr
}

func (c *Controller) write(p int) error {
	code := c.cfg.Code(p)
	if err := c.magnitude.Write(code); err != nil {
		c.log.WithError(err).Errorf("Write code %d failed", code)
		return fmt.Errorf("%w: magnitude output: %w", ErrHardwareWrite, err)
	}
	c.lastCode = code
	if p < 0 {
		p = -p
	}
	c.lastPercent = MaxPower - p
	return nil
}

func (c *Controller) output(dir Direction) DigitalOutput {
	if dir == Backward {
		return c.backward
	}
	return c.forward
}
