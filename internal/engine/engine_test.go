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

package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2pcommmap/internal/publish"
	"p2pcommmap/internal/store"
	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/loop"
	"p2pcommmap/pkg/maperrors"
)

type fixture struct {
	devices store.DeviceRepository
	states  store.StateRepository
	hub     *publish.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(store.DatabaseConfig{Driver: store.DriverSQLite, DSN: filepath.Join(t.TempDir(), "engine.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"}, false)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	f := &fixture{
		devices: store.NewDeviceRepository(db),
		states:  store.NewStateRepository(db),
		hub:     publish.NewHub(),
	}
	require.NoError(t, f.devices.UpsertDevices(context.Background(), []*store.Device{
		{ID: 0, Name: "Control Hub", IPAddr: "10.0.0.1", Lat: 1.35, Lng: 103.94, ActF: true, RptTo: 0, Type: "HB"},
		{ID: 1, Name: "north", IPAddr: "10.0.0.2", Lat: 1.29, Lng: 103.85, RptTo: 0, Type: "GW"},
		{ID: 2, Name: "south", IPAddr: "10.0.0.3", Lat: 1.30, Lng: 103.80, RptTo: 0, Type: "GW"},
	}))
	return f
}

func (f *fixture) engine(t *testing.T, period time.Duration) *Engine {
	t.Helper()
	e, err := New(Options{Devices: f.devices, States: f.states, Publisher: f.hub, Period: period})
	require.NoError(t, err)
	require.NoError(t, e.Load(context.Background()))
	t.Cleanup(e.Stop)
	return e
}

func (f *fixture) appendState(t *testing.T, ts float64, id, info string) {
	t.Helper()
	require.NoError(t, f.states.Append(context.Background(), &store.DeviceState{Time: ts, NodeID: id, UpdateInfo: info}))
}

func receive(t *testing.T, ch <-chan *topology.Snapshot) *topology.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot published")
		return nil
	}
}

func TestEngine_Load(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, time.Second)

	snap := e.Snapshot()
	var conns []string
	for _, l := range snap.Links {
		conns = append(conns, l.Connection)
	}
	assert.Equal(t, []string{"0-1", "0-2", "1-2"}, conns)
	assert.Equal(t, map[int]bool{0: true, 1: false, 2: false}, e.Activity())

	markers := e.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, "Control Hub", markers[0].Name)
	assert.Equal(t, "Gateway[1] north", markers[1].Name)
	assert.Equal(t, topology.Position{Lat: 1.29, Lng: 103.85}, markers[1].Pos)

	t.Run("second load rejected", func(t *testing.T) {
		assert.Error(t, e.Load(context.Background()))
	})
}

func TestEngine_LoadEmpty(t *testing.T) {
	db, err := store.Open(store.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "empty.db")}, false)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	e, err := New(Options{Devices: store.NewDeviceRepository(db), States: store.NewStateRepository(db)})
	require.NoError(t, err)
	assert.ErrorIs(t, e.Load(context.Background()), maperrors.ErrDataSource)
	assert.False(t, e.Start(context.Background()))
}

func TestEngine_CyclePublishes(t *testing.T) {
	f := newFixture(t)
	f.appendState(t, 5, "1", `{"comTo":[2],"throughputIn":3.5,"throughputOut":1.0,"active":true}`)
	f.appendState(t, 6, "2", `{"comTo":[1],"throughputIn":2.0,"throughputOut":0.5,"active":true}`)
	f.appendState(t, 7, "42", `{"active":true}`)

	e := f.engine(t, 50*time.Millisecond)
	_, ch := f.hub.Subscribe()
	require.True(t, e.Start(context.Background()))
	assert.False(t, e.Start(context.Background()))

	snap := receive(t, ch)
	assert.Equal(t, topology.LinkState{
		Connection: "1-2", Active: true, KeyExchange: true, ThroughputA: 3.5, ThroughputB: 2.0,
	}, snap.Links[2])
	assert.Equal(t, topology.LinkState{
		Connection: "0-1", Active: true, ThroughputA: 0, ThroughputB: 3.5,
	}, snap.Links[0])
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, snap.NodeActivity)
	assert.Equal(t, 7.0, e.Watermark())

	t.Run("next cycle still publishes", func(t *testing.T) {
		receive(t, ch)
	})

	t.Run("new records are picked up", func(t *testing.T) {
		f.appendState(t, 8, "2", `{"comTo":[],"actF":0}`)
		require.Eventually(t, func() bool {
			return e.Watermark() == 8 && !e.Activity()[2]
		}, 5*time.Second, 10*time.Millisecond)

		snap := e.Snapshot()
		assert.False(t, snap.Links[2].Active)
		assert.False(t, snap.Links[2].KeyExchange)
		assert.Zero(t, snap.Links[2].ThroughputA)
	})

	e.Stop()
	assert.Equal(t, loop.StateStopped, e.State())
	assert.NoError(t, e.Err())
}

type flakyStates struct {
	store.StateRepository
	fail bool
}

func (f *flakyStates) ListSince(ctx context.Context, since float64) ([]*store.DeviceState, error) {
	if f.fail {
		return nil, errors.New("disk I/O error")
	}
	return f.StateRepository.ListSince(ctx, since)
}

func TestEngine_FetchFailureSkipsCycle(t *testing.T) {
	f := newFixture(t)
	states := &flakyStates{StateRepository: f.states, fail: true}
	e, err := New(Options{Devices: f.devices, States: states, Publisher: f.hub, Period: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, e.Load(context.Background()))
	defer e.Stop()

	_, ch := f.hub.Subscribe()
	require.True(t, e.Start(context.Background()))

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, ch, 0)
	assert.Equal(t, loop.StateRunning, e.State())
}

func TestEngine_UnresolvableLinkStopsLoop(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, 20*time.Millisecond)

	before := e.Snapshot()
	e.mu.Lock()
	e.links = append(e.links, &topology.Link{Index: len(e.links), Key: topology.NewLinkKey(1, 99)})
	e.mu.Unlock()

	_, ch := f.hub.Subscribe()
	require.True(t, e.Start(context.Background()))

	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.ErrorIs(t, e.Err(), maperrors.ErrNotFound)
	assert.Equal(t, loop.StateStopped, e.State())
	assert.Len(t, ch, 0)

	after := e.Snapshot()
	assert.Equal(t, before.Links, after.Links[:len(before.Links)])
}

func TestEngine_SetPeriod(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, time.Second)

	require.NoError(t, e.SetPeriod(2.5))
	assert.Equal(t, 2500*time.Millisecond, e.Period())

	assert.ErrorIs(t, e.SetPeriod(0), maperrors.ErrInvalidPeriod)
	assert.ErrorIs(t, e.SetPeriod(-1), maperrors.ErrInvalidPeriod)
	assert.Equal(t, 2500*time.Millisecond, e.Period())
}

func TestEngine_StopBeforeStart(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, time.Second)
	e.Stop()
	assert.Equal(t, loop.StateStopped, e.State())
	assert.False(t, e.Start(context.Background()))
}
