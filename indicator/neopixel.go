package indicator

import (
	"fmt"
	"os"
)

// Neopixel command strings for the external neopixel tool.
const (
	neoForward  = "@3 !150000 8000"
	neoBackward = "@3 !150000 404000"
	neoStopped  = "@0 000010"
	neoFault    = "@2 !10000 ff"
	neoShutdown = "@0 010101"
)

// Neopixel implements Indicator using an external neopixel tool via named pipe.
type Neopixel struct {
	pipe *os.File
	last string
}

// NewNeopixel creates a new Neopixel indicator.
func NewNeopixel(pipePath string) (*Neopixel, error) {
	f, err := os.OpenFile(pipePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", pipePath, err)
	}
	return &Neopixel{pipe: f}, nil
}

// Forward implements Indicator.Forward.
func (n *Neopixel) Forward() {
	n.write(neoForward)
}

// Backward implements Indicator.Backward.
func (n *Neopixel) Backward() {
	n.write(neoBackward)
}

// Stopped implements Indicator.Stopped.
func (n *Neopixel) Stopped() {
	n.write(neoStopped)
}

// Fault implements Indicator.Fault.
func (n *Neopixel) Fault() {
	n.write(neoFault)
}

// Shutdown implements Indicator.Shutdown.
func (n *Neopixel) Shutdown() {
	n.write(neoShutdown)
}

// Release implements Indicator.Release.
func (n *Neopixel) Release() error {
	if n.pipe == nil {
		return nil
	}
	return n.pipe.Close()
}

// write sends s unless it is already showing.
func (n *Neopixel) write(s string) {
	if n.pipe == nil || s == n.last {
		return
	}
	n.pipe.Write([]byte(s + "\n"))
	n.last = s
}
