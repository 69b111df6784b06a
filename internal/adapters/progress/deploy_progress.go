package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// DeployProgress reports manifest steps and verifications on a terminal
type DeployProgress struct {
	out         io.Writer
	interactive bool
	spinner     *spinner.Spinner
	startTime   time.Time
}

// NewDeployProgress creates a new deployment progress reporter
func NewDeployProgress(out io.Writer, interactive bool) *DeployProgress {
	return &DeployProgress{
		out:         out,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// OnProgress handles progress events
func (p *DeployProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage == usecase.StageCompleted {
		p.stopSpinner()
		if p.interactive {
			color.New(color.FgGreen).Fprintf(p.out, "✓ Done in %s\n", time.Since(p.startTime).Round(time.Millisecond))
		}
		return
	}

	// an event without a message closes the current step
	if event.Message == "" {
		p.stopSpinner()
		return
	}

	line := event.Message
	if event.Total > 0 {
		line = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, event.Message)
	}

	if !p.interactive {
		fmt.Fprintln(p.out, line)
		return
	}

	if event.Spinner {
		if p.spinner == nil {
			p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			p.spinner.Writer = p.out
			_ = p.spinner.Color("cyan", "bold")
		}
		p.spinner.Suffix = " " + line
		if !p.spinner.Active() {
			p.spinner.Start()
		}
		return
	}

	p.stopSpinner()
	fmt.Fprintln(p.out, line)
}

// Info prints an info message
func (p *DeployProgress) Info(message string) {
	p.withSpinnerPaused(func() {
		color.New(color.FgCyan).Fprintln(p.out, message)
	})
}

// Error prints an error message
func (p *DeployProgress) Error(message string) {
	p.withSpinnerPaused(func() {
		color.New(color.FgRed).Fprintln(p.out, message)
	})
}

func (p *DeployProgress) withSpinnerPaused(fn func()) {
	wasActive := p.spinner != nil && p.spinner.Active()
	if wasActive {
		p.spinner.Stop()
	}
	fn()
	if wasActive {
		p.spinner.Start()
	}
}

func (p *DeployProgress) stopSpinner() {
	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
}

// Ensure it implements the interface
var _ usecase.ProgressSink = (*DeployProgress)(nil)
