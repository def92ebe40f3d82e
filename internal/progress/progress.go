// Package progress drives a scripted sequence of named steps on a timer.
//
// A Sequence owns exactly one goroutine while running. Cancelling the
// context stops the pending timer and closes the event channel, so a
// consumer that walks away mid-sequence leaks nothing.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Sentinel errors.
var (
	ErrNoSteps      = errors.New("progress: no steps")
	ErrInvalidStep  = errors.New("progress: invalid step")
	ErrAlreadyStart = errors.New("progress: sequence already started")
)

// Step is one scripted stage: its label is reported once its duration has
// elapsed.
type Step struct {
	Label    string
	Duration time.Duration
}

// State of a running sequence.
type State int

const (
	Pending State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event reports that step Index (0-based) finished.
type Event struct {
	Index int
	Total int
	Step  Step
}

// Last reports whether this is the final step.
func (e Event) Last() bool { return e.Index == e.Total-1 }

// Sequence advances through its steps in order.
type Sequence struct {
	steps []Step

	mu     sync.Mutex
	state  State
	err    error
	events chan Event
	done   chan struct{}
}

// New validates steps and returns an unstarted sequence.
func New(steps []Step) (*Sequence, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, s := range steps {
		if s.Label == "" || s.Duration < 0 {
			return nil, fmt.Errorf("%w: step %d", ErrInvalidStep, i)
		}
	}
	cp := make([]Step, len(steps))
	copy(cp, steps)
	return &Sequence{steps: cp}, nil
}

// Start begins the sequence and returns the event channel, which is
// closed when the sequence completes or ctx is cancelled.
func (s *Sequence) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Pending {
		return nil, ErrAlreadyStart
	}
	s.state = Running
	s.events = make(chan Event)
	s.done = make(chan struct{})
	go s.run(ctx)
	return s.events, nil
}

func (s *Sequence) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for i, step := range s.steps {
		timer.Reset(step.Duration)
		select {
		case <-ctx.Done():
			s.finish(Cancelled, ctx.Err())
			return
		case <-timer.C:
		}

		select {
		case <-ctx.Done():
			s.finish(Cancelled, ctx.Err())
			return
		case s.events <- Event{Index: i, Total: len(s.steps), Step: step}:
		}
	}
	s.finish(Completed, nil)
}

func (s *Sequence) finish(st State, err error) {
	s.mu.Lock()
	s.state = st
	s.err = err
	s.mu.Unlock()
}

// Wait blocks until the sequence stops and returns ctx's error if it was
// cancelled. Wait on an unstarted sequence returns immediately.
func (s *Sequence) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State returns the current state.
func (s *Sequence) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run starts steps and calls fn for each finished step. It returns when
// the sequence completes or ctx is cancelled.
func Run(ctx context.Context, steps []Step, fn func(Event)) error {
	seq, err := New(steps)
	if err != nil {
		return err
	}
	events, err := seq.Start(ctx)
	if err != nil {
		return err
	}
	for ev := range events {
		if fn != nil {
			fn(ev)
		}
	}
	return seq.Wait()
}

// Total returns the scripted duration of steps.
func Total(steps []Step) time.Duration {
	var d time.Duration
	for _, s := range steps {
		d += s.Duration
	}
	return d
}
