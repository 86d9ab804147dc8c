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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2pcommmap/pkg/maperrors"
)

func TestLoop(t *testing.T) {
	t.Run("rejects non-positive period", func(t *testing.T) {
		_, err := New(0, func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, maperrors.ErrInvalidPeriod)
	})

	t.Run("runs cycles until stopped", func(t *testing.T) {
		var cycles atomic.Int32
		l, err := New(5*time.Millisecond, func(ctx context.Context) error {
			cycles.Add(1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, StateIdle, l.State())

		require.True(t, l.Start(context.Background()))
		require.False(t, l.Start(context.Background()))
		assert.Eventually(t, func() bool { return cycles.Load() >= 3 }, time.Second, time.Millisecond)

		l.Stop()
		assert.Equal(t, StateStopped, l.State())
		assert.NoError(t, l.Err())

		after := cycles.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, after, cycles.Load())

		// stopped is terminal
		assert.False(t, l.Start(context.Background()))
		l.Stop()
	})

	t.Run("stop waits for the in-flight cycle", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		var completed atomic.Bool
		l, err := New(time.Hour, func(ctx context.Context) error {
			close(entered)
			<-release
			completed.Store(true)
			return nil
		})
		require.NoError(t, err)
		l.Start(context.Background())
		<-entered

		stopped := make(chan struct{})
		go func() {
			l.Stop()
			close(stopped)
		}()

		select {
		case <-stopped:
			t.Fatal("stop returned before the cycle completed")
		case <-time.After(20 * time.Millisecond):
		}
		close(release)
		<-stopped
		assert.True(t, completed.Load())
	})

	t.Run("stop before start", func(t *testing.T) {
		l, err := New(time.Second, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		l.Stop()
		assert.Equal(t, StateStopped, l.State())
		assert.False(t, l.Start(context.Background()))
		<-l.Done()
	})

	t.Run("task error is fatal", func(t *testing.T) {
		boom := errors.New("boom")
		l, err := New(time.Millisecond, func(ctx context.Context) error { return boom })
		require.NoError(t, err)
		l.Start(context.Background())
		<-l.Done()
		assert.Equal(t, StateStopped, l.State())
		assert.ErrorIs(t, l.Err(), boom)
	})

	t.Run("context cancel stops between cycles", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		l, err := New(time.Hour, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		l.Start(ctx)
		cancel()
		select {
		case <-l.Done():
		case <-time.After(time.Second):
			t.Fatal("loop did not stop on context cancel")
		}
		assert.NoError(t, l.Err())
	})

	t.Run("set period", func(t *testing.T) {
		l, err := New(time.Hour, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		assert.ErrorIs(t, l.SetPeriod(-time.Second), maperrors.ErrInvalidPeriod)
		require.NoError(t, l.SetPeriod(3*time.Second))
		assert.Equal(t, 3*time.Second, l.Period())
	})
}
