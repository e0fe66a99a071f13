//go:build linux

package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-gpiocdev"
)

func edge(offset int, rising bool) gpiocdev.LineEvent {
	typ := gpiocdev.LineEventFallingEdge
	if rising {
		typ = gpiocdev.LineEventRisingEdge
	}
	return gpiocdev.LineEvent{Offset: offset, Type: typ}
}

func runRotary(t *testing.T, r *Rotary) (func() []Command, context.CancelFunc) {
	t.Helper()
	var mu sync.Mutex
	var got []Command
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, func(c Command) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, c)
			return nil
		})
	}()
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.handler != nil
	}, time.Second, time.Millisecond)
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return func() []Command {
		mu.Lock()
		defer mu.Unlock()
		return append([]Command(nil), got...)
	}, cancel
}

func TestRotaryDecode(t *testing.T) {
	r := &Rotary{dtPin: 27, step: 5}
	commands, _ := runRotary(t, r)

	r.handleEvent(edge(27, false))
	r.handleEvent(edge(17, true))
	r.handleEvent(edge(17, false))
	r.handleEvent(edge(27, true))
	r.handleEvent(edge(17, true))
	r.handleButton(edge(22, false))

	assert.Equal(t, []Command{
		{Kind: Jog, Delta: 5, Source: "rotary"},
		{Kind: Jog, Delta: -5, Source: "rotary"},
		{Kind: Stop, Source: "rotary"},
	}, commands())
}

func TestRotaryConcurrentLines(t *testing.T) {
	r := &Rotary{dtPin: 27, step: 1}
	commands, _ := runRotary(t, r)

	// each line delivers its events from its own goroutine
	const turns = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < turns; i++ {
			r.handleEvent(edge(27, i%2 == 0))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < turns; i++ {
			r.handleEvent(edge(17, true))
		}
	}()
	wg.Wait()

	got := commands()
	assert.Len(t, got, turns)
	for _, c := range got {
		assert.Equal(t, Jog, c.Kind)
		assert.Contains(t, []int{1, -1}, c.Delta)
	}
}
