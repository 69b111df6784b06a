package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// PropagationWaiter sleeps for the explorer propagation delay, showing a
// countdown when attached to a terminal
type PropagationWaiter struct {
	out         io.Writer
	interactive bool
	tick        time.Duration
}

// NewPropagationWaiter creates a new propagation waiter
func NewPropagationWaiter(out io.Writer, interactive bool) *PropagationWaiter {
	return &PropagationWaiter{out: out, interactive: interactive, tick: time.Second}
}

// Wait returns after delay or with ctx.Err() if ctx ends first
func (w *PropagationWaiter) Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	if !w.interactive {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = w.out
	_ = s.Color("yellow")
	deadline := time.Now().Add(delay)
	s.Suffix = countdown(delay)
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-ticker.C:
			s.Suffix = countdown(time.Until(deadline))
		}
	}
}

func countdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf(" waiting for explorer to index deployments (%s)", remaining.Round(time.Second))
}

// Ensure it implements the interface
var _ usecase.PropagationWaiter = (*PropagationWaiter)(nil)
