package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// runStages is the order stages are shown in the spinner trail
var runStages = []string{
	usecase.StagePlan,
	usecase.StageDeploy,
	usecase.StageInitialize,
	usecase.StageVerify,
}

type stageInfo struct {
	Stage     string
	StartTime time.Time
	EndTime   time.Time
	Current   int
	Total     int
	Message   string
}

// SpinnerSink renders run progress as a spinner followed by the trail of
// stages seen so far
type SpinnerSink struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
	stages  []stageInfo
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)

// NewSpinnerSink creates a spinner writing to stderr
func NewSpinnerSink() *SpinnerSink {
	return newSpinnerSink(os.Stderr)
}

func newSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &SpinnerSink{spinner: s, out: out}
}

// OnProgress updates the stage trail and the spinner state
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.track(event)

	if event.Stage == usecase.StageDone {
		r.spinner.Stop()
		return
	}

	r.spinner.Suffix = " " + r.display()
	if event.Spinner && !r.spinner.Active() {
		r.spinner.Start()
	}
}

// Info prints a message above the spinner
func (r *SpinnerSink) Info(message string) {
	r.print(color.New(color.FgCyan), message)
}

// Error prints a failure above the spinner
func (r *SpinnerSink) Error(message string) {
	r.print(color.New(color.FgRed), message)
}

func (r *SpinnerSink) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	_, _ = c.Fprintln(r.out, message)
	if wasActive {
		r.spinner.Start()
	}
}

// track records the event on its stage, closing earlier stages
func (r *SpinnerSink) track(event usecase.ProgressEvent) {
	now := time.Now()
	if n := len(r.stages); n > 0 && r.stages[n-1].Stage == event.Stage {
		last := &r.stages[n-1]
		last.Current, last.Total, last.Message = event.Current, event.Total, event.Message
		return
	}
	for i := range r.stages {
		if r.stages[i].EndTime.IsZero() {
			r.stages[i].EndTime = now
		}
	}
	r.stages = append(r.stages, stageInfo{
		Stage:     event.Stage,
		StartTime: now,
		Current:   event.Current,
		Total:     event.Total,
		Message:   event.Message,
	})
}

// display renders "✓ plan → ● deploy 2/5 deploy vault"
func (r *SpinnerSink) display() string {
	var parts []string
	for _, stage := range r.stages {
		if !knownStage(stage.Stage) {
			continue
		}

		if !stage.EndTime.IsZero() {
			parts = append(parts, fmt.Sprintf("%s %s (%s)",
				color.GreenString("✓"),
				color.GreenString(stage.Stage),
				stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond)))
			continue
		}

		current := fmt.Sprintf("%s %s", color.YellowString("●"), color.YellowString(stage.Stage))
		if stage.Total > 0 {
			current += fmt.Sprintf(" %d/%d", stage.Current, stage.Total)
		}
		if stage.Message != "" {
			current += " " + color.New(color.Faint).Sprint(stage.Message)
		}
		parts = append(parts, current)
	}
	return strings.Join(parts, " → ")
}

func knownStage(stage string) bool {
	for _, s := range runStages {
		if s == stage {
			return true
		}
	}
	return false
}
