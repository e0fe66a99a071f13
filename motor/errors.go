package motor

import "errors"

var (
	// ErrInvalidCommand is returned for power values outside the configured
	// range. The controller is left untouched.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrHardwareWrite is returned when a digital or analog output reports a
	// failed write.
	ErrHardwareWrite = errors.New("hardware write failed")

	// ErrShutdownWrite is returned by Close when teardown could only be
	// completed on a best-effort basis.
	ErrShutdownWrite = errors.New("shutdown write failed")

	// ErrClosed is returned for commands issued after Close.
	ErrClosed = errors.New("motor controller closed")

	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("invalid motor config")
)
