package pin

import "sync"

// Sim implements Output in memory. It is used for dry runs and tests.
type Sim struct {
	mu     sync.Mutex
	offset int
	value  bool
	writes []bool
	fail   error
	closed bool
}

// NewSim returns an inactive simulated line.
func NewSim(offset int) *Sim {
	return &Sim{offset: offset}
}

// Set implements Output.Set.
func (s *Sim) Set(value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.fail != nil {
		return s.fail
	}
	s.value = value
	s.writes = append(s.writes, value)
	return nil
}

// Get implements Output.Get.
func (s *Sim) Get() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	return s.value, nil
}

// Close implements Output.Close.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Offset returns the simulated line number.
func (s *Sim) Offset() int {
	return s.offset
}

// Writes returns every accepted write in order.
func (s *Sim) Writes() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.writes...)
}

// Fail makes every following Set return err. A nil err clears it.
func (s *Sim) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Closed reports whether Close was called.
func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
