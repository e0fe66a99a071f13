//go:build linux

package command

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"
)

// Rotary is a jog dial on a quadrature rotary encoder: clockwise adds one
// step, counter-clockwise removes one, pressing the knob stops.
type Rotary struct {
	dtLine  *gpiocdev.Line
	clkLine *gpiocdev.Line
	btnLine *gpiocdev.Line
	dtPin   int
	lastDT  atomic.Int32 // written by the DT watcher, read by the CLK watcher
	step    int

	mu      sync.Mutex
	handler Handler
}

// NewRotary requests the encoder lines described by cfg.
func NewRotary(cfg SourceConfig) (*Rotary, error) {
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}

	debounceRotary := 250 * time.Microsecond
	debounceButton := 2 * time.Millisecond

	r := &Rotary{step: cfg.Step, dtPin: cfg.DTPin}

	var err error

	r.dtLine, err = gpiocdev.RequestLine(cfg.Chip, cfg.DTPin,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounceRotary),
		gpiocdev.WithConsumer("motord"),
		gpiocdev.WithEventHandler(r.handleEvent))
	if err != nil {
		return nil, err
	}

	r.clkLine, err = gpiocdev.RequestLine(cfg.Chip, cfg.CLKPin,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounceRotary),
		gpiocdev.WithConsumer("motord"),
		gpiocdev.WithEventHandler(r.handleEvent))
	if err != nil {
		r.dtLine.Close()
		return nil, err
	}

	if cfg.ButtonPin > 0 {
		r.btnLine, err = gpiocdev.RequestLine(cfg.Chip, cfg.ButtonPin,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithDebounce(debounceButton),
			gpiocdev.WithConsumer("motord"),
			gpiocdev.WithEventHandler(r.handleButton))
		if err != nil {
			r.dtLine.Close()
			r.clkLine.Close()
			return nil, err
		}
	}

	return r, nil
}

// Run implements Source.Run. Events arriving outside Run are dropped.
func (r *Rotary) Run(ctx context.Context, h Handler) error {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	r.handler = nil
	r.mu.Unlock()
	return nil
}

func (r *Rotary) handleEvent(evt gpiocdev.LineEvent) {
	var level int32
	switch evt.Type {
	case gpiocdev.LineEventRisingEdge:
		level = 1
	case gpiocdev.LineEventFallingEdge:
		level = 0
	default:
		return
	}

	if evt.Offset == r.dtPin {
		r.lastDT.Store(level)
		return
	}

	// Direction is decoded on the CLK rising edge.
	if level == 1 {
		delta := r.step
		if r.lastDT.Load() != 0 {
			delta = -r.step
		}
		r.emit(Command{Kind: Jog, Delta: delta})
	}
}

func (r *Rotary) handleButton(evt gpiocdev.LineEvent) {
	r.emit(Command{Kind: Stop})
}

func (r *Rotary) emit(cmd Command) {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h == nil {
		return
	}
	cmd.Source = "rotary"
	if err := h(cmd); err != nil {
		log.WithField("source", cmd.Source).Warnf("%s: %v", cmd, err)
	}
}

// Close implements Source.Close.
func (r *Rotary) Close() error {
	if r.dtLine != nil {
		r.dtLine.Close()
	}
	if r.clkLine != nil {
		r.clkLine.Close()
	}
	if r.btnLine != nil {
		r.btnLine.Close()
	}
	return nil
}
