package search

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrBusy is returned by Submit while another action is in flight.
var ErrBusy = errors.New("an action is already in progress")

// State is a snapshot posted to the presentation layer. Busy is true while
// the action runs; the final State carries the Outcome.
type State struct {
	ActionID string
	Name     string
	Busy     bool
	Outcome  *Outcome
}

// Task is the background half of an action.
type Task func(ctx context.Context) Outcome

// Runner executes at most one action at a time on a background goroutine and
// reports progress through a single update channel. The consumer of Updates
// is the only place visible state changes.
type Runner struct {
	updates chan State
	busy    atomic.Bool
	logger  *slog.Logger
}

// NewRunner creates a Runner. buffer sizes the update channel; the background
// goroutine blocks on send when the consumer falls behind.
func NewRunner(buffer int, logger *slog.Logger) *Runner {
	return &Runner{
		updates: make(chan State, buffer),
		logger:  logger,
	}
}

// Updates returns the state channel.
func (r *Runner) Updates() <-chan State {
	return r.updates
}

// Busy reports whether an action is in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Submit starts task in the background. It returns ErrBusy instead of
// queueing when an action is already running.
func (r *Runner) Submit(ctx context.Context, name string, task Task) (string, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}

	id := uuid.NewString()
	go func() {
		r.updates <- State{ActionID: id, Name: name, Busy: true}
		out := task(ctx)
		r.logger.Debug("action finished", "action_id", id, "action", name, "kind", out.Kind)
		// Release before posting so a consumer reacting to the final state
		// can submit the next action immediately.
		r.busy.Store(false)
		r.updates <- State{ActionID: id, Name: name, Outcome: &out}
	}()
	return id, nil
}

// Await submits task and blocks until its final state arrives. Intermediate
// states are passed to onState when it is non-nil.
func (r *Runner) Await(ctx context.Context, name string, task Task, onState func(State)) (Outcome, error) {
	id, err := r.Submit(ctx, name, task)
	if err != nil {
		return Outcome{}, err
	}
	for st := range r.updates {
		if onState != nil {
			onState(st)
		}
		if st.ActionID == id && st.Outcome != nil {
			return *st.Outcome, nil
		}
	}
	return Outcome{}, errors.New("update channel closed")
}
