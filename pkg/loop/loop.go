// Copyright 2025 The Wireflow Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loop

import (
	"context"
	"sync"
	"time"

	"p2pcommmap/pkg/maperrors"
)

// Task is one cycle of work. A non-nil error is fatal and ends the loop.
type Task func(ctx context.Context) error

// State is the lifecycle state of a Loop.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Loop runs a task repeatedly, waiting a period between cycles.
// A cycle is never interrupted: Stop and context cancellation are only
// observed between cycles. Stopped is terminal.
type Loop struct {
	task Task

	mu     sync.Mutex
	state  State
	period time.Duration
	err    error

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates an idle loop.
func New(period time.Duration, task Task) (*Loop, error) {
	if period <= 0 {
		return nil, maperrors.ErrInvalidPeriod
	}
	return &Loop{
		task:   task,
		period: period,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start moves an idle loop to running. It reports whether the loop was
// started; calling it on a running or stopped loop does nothing.
// Cancelling ctx stops the loop at the next cycle boundary.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return false
	}
	l.state = StateRunning
	l.mu.Unlock()

	go l.run(ctx)
	return true
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.doneCh)

	// in-flight cycles run to completion even if ctx is cancelled
	cycleCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-l.stopCh:
			l.finish(nil)
			return
		case <-ctx.Done():
			l.finish(nil)
			return
		default:
		}

		if err := l.task(cycleCtx); err != nil {
			l.finish(err)
			return
		}

		timer := time.NewTimer(l.Period())
		select {
		case <-l.stopCh:
			timer.Stop()
			l.finish(nil)
			return
		case <-ctx.Done():
			timer.Stop()
			l.finish(nil)
			return
		case <-timer.C:
		}
	}
}

func (l *Loop) finish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateStopped
	l.err = err
}

// Stop requests the loop to end and waits for the in-flight cycle to
// complete. It must not be called from inside the task.
func (l *Loop) Stop() {
	l.mu.Lock()
	switch l.state {
	case StateIdle:
		l.state = StateStopped
		close(l.stopCh)
		close(l.doneCh)
		l.mu.Unlock()
		return
	case StateRunning:
		select {
		case <-l.stopCh:
		default:
			close(l.stopCh)
		}
	}
	l.mu.Unlock()

	<-l.doneCh
}

// SetPeriod changes the wait between cycles. The wait already in
// progress keeps its old duration.
func (l *Loop) SetPeriod(period time.Duration) error {
	if period <= 0 {
		return maperrors.ErrInvalidPeriod
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.period = period
	return nil
}

// Period returns the current wait between cycles.
func (l *Loop) Period() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.period
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

// Err returns the error that ended the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
