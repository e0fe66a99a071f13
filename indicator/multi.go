package indicator

import "go.uber.org/multierr"

// Multi combines multiple Indicator implementations.
type Multi struct {
	indicators []Indicator
}

// NewMulti returns an Indicator driving all of indicators.
func NewMulti(indicators ...Indicator) *Multi {
	return &Multi{indicators: indicators}
}

// Forward implements Indicator.Forward.
func (m *Multi) Forward() {
	for _, ind := range m.indicators {
		ind.Forward()
	}
}

// Backward implements Indicator.Backward.
func (m *Multi) Backward() {
	for _, ind := range m.indicators {
		ind.Backward()
	}
}

// Stopped implements Indicator.Stopped.
func (m *Multi) Stopped() {
	for _, ind := range m.indicators {
		ind.Stopped()
	}
}

// Fault implements Indicator.Fault.
func (m *Multi) Fault() {
	for _, ind := range m.indicators {
		ind.Fault()
	}
}

// Shutdown implements Indicator.Shutdown.
func (m *Multi) Shutdown() {
	for _, ind := range m.indicators {
		ind.Shutdown()
	}
}

// Release implements Indicator.Release.
func (m *Multi) Release() error {
	var errs error
	for _, ind := range m.indicators {
		errs = multierr.Append(errs, ind.Release())
	}
	return errs
}
