package dac

import (
	"fmt"
	"sync"
)

// Sim implements Output in memory.
type Sim struct {
	mu        sync.Mutex
	fullScale int
	code      int
	persisted int
	writes    []int
	fail      error
	closed    bool
}

// NewSim returns a simulated DAC accepting codes up to fullScale.
func NewSim(fullScale int) *Sim {
	return &Sim{fullScale: fullScale, code: -1, persisted: -1}
}

// Write implements Output.Write.
func (s *Sim) Write(code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(code); err != nil {
		return err
	}
	s.code = code
	s.writes = append(s.writes, code)
	return nil
}

// WritePersist implements Output.WritePersist.
func (s *Sim) WritePersist(code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(code); err != nil {
		return err
	}
	s.code = code
	s.persisted = code
	s.writes = append(s.writes, code)
	return nil
}

// FullScale implements Output.FullScale.
func (s *Sim) FullScale() int {
	return s.fullScale
}

// Close implements Output.Close.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Code returns the current output code, -1 before the first write.
func (s *Sim) Code() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// Persisted returns the code held in non-volatile memory, -1 if none.
func (s *Sim) Persisted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// Writes returns every accepted code in order.
func (s *Sim) Writes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.writes...)
}

// Fail makes every following write return err. A nil err clears it.
func (s *Sim) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Sim) check(code int) error {
	if s.closed {
		return ErrClosed
	}
	if s.fail != nil {
		return s.fail
	}
	if code < 0 || code > s.fullScale {
		return fmt.Errorf("%w: %d", ErrCodeRange, code)
	}
	return nil
}
