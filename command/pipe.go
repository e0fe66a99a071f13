package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Pipe reads command lines from a named pipe. Writers may come and go.
type Pipe struct {
	path string
}

// NewPipe creates the named pipe at path, replacing any existing file.
func NewPipe(path string) (*Pipe, error) {
	if path == "" {
		return nil, fmt.Errorf("pipe path missing")
	}

	os.Remove(path)
	if err := syscall.Mkfifo(path, 0660); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", path, err)
	}
	return &Pipe{path: path}, nil
}

// Run implements Source.Run.
func (p *Pipe) Run(ctx context.Context, h Handler) error {
	// Opened read-write so the open does not wait for a writer and the
	// read side never sees EOF between writers.
	file, err := os.OpenFile(p.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", p.path, err)
	}
	defer file.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			file.Close()
		case <-done:
		}
	}()

	log.Printf("Command pipe listening on %s", p.path)

	source := "pipe:" + p.path
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		dispatch(source, scanner.Text(), h)
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", p.path, err)
	}
	return nil
}

// Close implements Source.Close. It removes the pipe.
func (p *Pipe) Close() error {
	return os.Remove(p.path)
}
