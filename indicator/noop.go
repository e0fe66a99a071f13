package indicator

// Noop implements Indicator but does nothing.
// Used when no indicators are configured.
type Noop struct{}

// Forward implements Indicator.Forward.
func (n *Noop) Forward() {}

// Backward implements Indicator.Backward.
func (n *Noop) Backward() {}

// Stopped implements Indicator.Stopped.
func (n *Noop) Stopped() {}

// Fault implements Indicator.Fault.
func (n *Noop) Fault() {}

// Shutdown implements Indicator.Shutdown.
func (n *Noop) Shutdown() {}

// Release implements Indicator.Release.
func (n *Noop) Release() error {
	return nil
}
