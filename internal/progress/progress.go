// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress maps upload progress to status text and models the
// loading overlay as an explicit state machine:
//
//	Idle -> Uploading -> Processing -> Done
//	          |              |
//	          +---> Failed <-+
//
// Reset returns any state to Idle.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Complete is the terminal progress value.
const Complete = 100

// ErrInvalidTransition is returned when a transition is not allowed from
// the tracker's current state.
var ErrInvalidTransition = errors.New("invalid progress transition")

// State is a loading-overlay state.
type State int

const (
	Idle State = iota
	Uploading
	Processing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Processing:
		return "processing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Active reports whether the overlay is shown in this state.
func (s State) Active() bool {
	return s == Uploading || s == Processing
}

// band is a lower-inclusive progress threshold and its text.
type band struct {
	min  int
	text string
}

// bands are checked in descending order of min; the first whose min is
// at or below p wins.
var bands = []band{
	{Complete, "Complete!"},
	{75, "Hold tight! Your article is almost here..."},
	{50, "Spilling the digital ink..."},
	{25, "Unlocking the story..."},
}

const firstBandText = "Crafting your article..."

// TextFor returns the status text for a progress value.
func TextFor(p int) string {
	for _, b := range bands {
		if p >= b.min {
			return b.text
		}
	}
	return firstBandText
}

// Snapshot is a point-in-time view of a Tracker.
type Snapshot struct {
	State    State
	Progress int
	Text     string
	Err      error
}

// Tracker holds the overlay state. It is safe for concurrent use: upload
// progress arrives from the transfer goroutine while the UI reads it.
type Tracker struct {
	mu       sync.Mutex
	state    State
	progress int
	limit    int
	err      error
}

// NewTracker returns an Idle tracker that never reports more than limit
// while uploading. A limit outside (0, 100) means 95.
func NewTracker(limit int) *Tracker {
	if limit <= 0 || limit >= Complete {
		limit = 95
	}
	return &Tracker{limit: limit}
}

// Start moves Idle to Uploading at 0.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Idle {
		return t.invalid("start")
	}
	t.state = Uploading
	t.progress = 0
	t.err = nil
	return nil
}

// Advance raises upload progress to p, clamped to [current, limit] so the
// value never decreases and never reaches 100 during transfer.
func (t *Tracker) Advance(p int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Uploading {
		return t.invalid("advance")
	}
	p = min(p, t.limit)
	t.progress = max(t.progress, p)
	return nil
}

// BeginProcessing moves Uploading to Processing, keeping the current value.
func (t *Tracker) BeginProcessing() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Uploading {
		return t.invalid("begin processing")
	}
	t.state = Processing
	return nil
}

// Step advances the processing tail by n. Reaching 100 moves to Done.
// It reports whether the tracker is now Done.
func (t *Tracker) Step(n int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Processing {
		return false, t.invalid("step")
	}
	if n < 1 {
		n = 1
	}
	t.progress = min(t.progress+n, Complete)
	if t.progress == Complete {
		t.state = Done
	}
	return t.state == Done, nil
}

// Fail moves Uploading or Processing to Failed.
func (t *Tracker) Fail(err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Active() {
		return t.invalid("fail")
	}
	t.state = Failed
	t.err = err
	return nil
}

// Reset returns the tracker to Idle at 0.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Idle
	t.progress = 0
	t.err = nil
}

// Snapshot returns the current state, value and text.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:    t.state,
		Progress: t.progress,
		Text:     TextFor(t.progress),
		Err:      t.err,
	}
}

func (t *Tracker) invalid(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, t.state)
}

// RunProcessing drives the synthetic processing tail: every interval it
// steps the tracker by step and calls onTick with the new snapshot, until
// the tracker is Done or ctx is cancelled. The ticker is always stopped on
// return.
func RunProcessing(ctx context.Context, t *Tracker, interval time.Duration, step int, onTick func(Snapshot)) error {
	if err := t.BeginProcessing(); err != nil {
		return err
	}
	if onTick != nil {
		onTick(t.Snapshot())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := t.Step(step)
			if err != nil {
				return err
			}
			if onTick != nil {
				onTick(t.Snapshot())
			}
			if done {
				return nil
			}
		}
	}
}
