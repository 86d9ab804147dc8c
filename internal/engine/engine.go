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
	"sync"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"p2pcommmap/internal/metrics"
	"p2pcommmap/internal/publish"
	"p2pcommmap/internal/store"
	"p2pcommmap/internal/syncer"
	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/log"
	"p2pcommmap/pkg/loop"
	"p2pcommmap/pkg/maperrors"
)

// DefaultPeriod is the refresh period used when none is configured.
const DefaultPeriod = 10 * time.Second

// Engine owns the node and link collections and drives the sync loop.
// Every exported method is safe for concurrent use.
type Engine struct {
	logger    klog.Logger
	devices   store.DeviceRepository
	syncer    *syncer.Syncer
	publisher publish.Publisher
	loop      *loop.Loop

	mu        sync.RWMutex
	nodes     *topology.NodeStore
	links     []*topology.Link
	watermark float64
	loaded    bool
}

type Options struct {
	Devices   store.DeviceRepository
	States    store.StateRepository
	Publisher publish.Publisher
	Period    time.Duration
}

func New(opts Options) (*Engine, error) {
	if opts.Period == 0 {
		opts.Period = DefaultPeriod
	}
	e := &Engine{
		logger:    log.GetLogger("engine"),
		devices:   opts.Devices,
		syncer:    syncer.New(opts.States),
		publisher: opts.Publisher,
		nodes:     topology.NewNodeStore(),
	}

	l, err := loop.New(opts.Period, e.cycle)
	if err != nil {
		return nil, err
	}
	e.loop = l
	return e, nil
}

// Load reads the device relationships, builds the link set and derives
// the initial link state. It must be called once before Start.
func (e *Engine) Load(ctx context.Context) error {
	devices, err := e.devices.ListDevices(ctx)
	if err != nil {
		return errors.Wrapf(maperrors.ErrDataSource, "%v", err)
	}
	records := make([]topology.DeviceRecord, 0, len(devices))
	for _, d := range devices {
		records = append(records, d.Record())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return errors.New("topology already loaded")
	}
	if err := e.nodes.Load(records); err != nil {
		return err
	}
	e.links = topology.BuildLinks(e.nodes.All())
	if err := topology.RefreshLinks(e.links, e.nodes); err != nil {
		return err
	}
	e.loaded = true

	e.logger.Info("topology loaded", "nodes", e.nodes.Len(), "links", len(e.links))
	return nil
}

// Start begins the sync loop. It is a no-op unless the engine is idle and loaded.
func (e *Engine) Start(ctx context.Context) bool {
	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if !loaded {
		e.logger.Info("start ignored, topology not loaded")
		return false
	}
	if !e.loop.Start(ctx) {
		return false
	}
	e.logger.Info("sync loop started", "period", e.loop.Period())
	return true
}

// Stop ends the sync loop after the in-flight cycle completes.
func (e *Engine) Stop() {
	e.loop.Stop()
}

// SetPeriod changes the refresh period, effective from the next wait.
func (e *Engine) SetPeriod(seconds float64) error {
	if seconds <= 0 {
		return errors.Wrapf(maperrors.ErrInvalidPeriod, "%v seconds", seconds)
	}
	if err := e.loop.SetPeriod(time.Duration(seconds * float64(time.Second))); err != nil {
		return err
	}
	e.logger.Info("refresh period changed", "seconds", seconds)
	return nil
}

func (e *Engine) Period() time.Duration {
	return e.loop.Period()
}

func (e *Engine) State() loop.State {
	return e.loop.State()
}

// Done is closed once the sync loop has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.loop.Done()
}

// Err returns the error that stopped the sync loop, if any.
func (e *Engine) Err() error {
	return e.loop.Err()
}

// Markers lists the map markers in ascending id order.
func (e *Engine) Markers() []topology.Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return topology.NewMarkers(e.nodes.All())
}

// Activity returns the activity flag of every node.
func (e *Engine) Activity() map[int]bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return topology.NewSnapshot(nil, e.nodes.All()).NodeActivity
}

// Snapshot returns the current link and node state.
func (e *Engine) Snapshot() *topology.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return topology.NewSnapshot(e.links, e.nodes.All())
}

// Watermark returns the timestamp of the newest state record seen.
func (e *Engine) Watermark() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.watermark
}

// cycle runs one synchronize, refresh and publish pass. Only an unresolvable
// link endpoint is returned; it stops the loop.
func (e *Engine) cycle(ctx context.Context) error {
	started := time.Now()

	since := e.Watermark()
	rows, err := e.syncer.Fetch(ctx, since)
	if err != nil {
		e.logger.Error(err, "poll state log failed, retrying next period", "watermark", since)
		metrics.ObserveCycle(metrics.ResultFetchError, started)
		return nil
	}

	snapshot, res, err := e.apply(rows, since)
	if err != nil {
		e.logger.Error(err, "refresh links failed, stopping sync loop")
		metrics.ObserveCycle(metrics.ResultFatal, started)
		return err
	}

	metrics.ObserveRecords(res.Applied, res.Skipped, res.Watermark)
	metrics.ObserveSnapshot(snapshot)

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, snapshot); err != nil {
			metrics.PublishErrors.Inc()
			e.logger.Error(err, "publish snapshot failed")
		}
	}

	metrics.ObserveCycle(metrics.ResultOK, started)
	e.logger.V(log.DebugV).Info("cycle complete", "watermark", res.Watermark, "applied", res.Applied,
		"skipped", res.Skipped, "duration", time.Since(started))
	return nil
}

func (e *Engine) apply(rows []*store.DeviceState, since float64) (*topology.Snapshot, syncer.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.syncer.Apply(rows, e.nodes, since)
	e.watermark = res.Watermark
	if err := topology.RefreshLinks(e.links, e.nodes); err != nil {
		return nil, res, err
	}
	return topology.NewSnapshot(e.links, e.nodes.All()), res, nil
}
