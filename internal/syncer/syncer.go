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

package syncer

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"p2pcommmap/internal/store"
	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/log"
	"p2pcommmap/pkg/maperrors"
)

// Result summarizes one apply pass over the state log.
type Result struct {
	// Watermark is the largest timestamp seen, skipped rows included.
	Watermark float64
	Applied   int
	Skipped   int
}

// Syncer applies new state log rows to the node store.
type Syncer struct {
	logger klog.Logger
	states store.StateRepository
}

func New(states store.StateRepository) *Syncer {
	return &Syncer{
		logger: log.GetLogger("syncer"),
		states: states,
	}
}

// Fetch reads the rows newer than since in ascending timestamp order.
func (s *Syncer) Fetch(ctx context.Context, since float64) ([]*store.DeviceState, error) {
	return s.states.ListSince(ctx, since)
}

// Apply overwrites the runtime state of the nodes named by rows. Rows for
// unknown nodes or with undecodable payloads are logged and skipped.
// Rows must be in ascending timestamp order.
func (s *Syncer) Apply(rows []*store.DeviceState, nodes topology.NodeLookup, since float64) Result {
	res := Result{Watermark: since}
	for _, row := range rows {
		if row.Time > res.Watermark {
			res.Watermark = row.Time
		}

		if err := s.applyRow(row, nodes); err != nil {
			res.Skipped++
			s.logger.Error(err, "skip state record", "time", row.Time, "node", row.NodeID)
			continue
		}
		res.Applied++
	}

	if len(rows) > 0 {
		s.logger.V(log.DebugV).Info("applied state records", "applied", res.Applied, "skipped", res.Skipped, "watermark", res.Watermark)
	}
	return res
}

func (s *Syncer) applyRow(row *store.DeviceState, nodes topology.NodeLookup) error {
	id, err := strconv.Atoi(strings.TrimSpace(row.NodeID))
	if err != nil {
		return errors.Wrapf(maperrors.ErrUnknownNode, "node id %q", row.NodeID)
	}
	node, err := nodes.Get(id)
	if err != nil {
		return errors.Wrapf(maperrors.ErrUnknownNode, "node id %d", id)
	}

	state, err := DecodePayload(row.UpdateInfo)
	if err != nil {
		return err
	}
	node.ApplyState(state)
	return nil
}

// PollAndApply fetches and applies in one step. The caller must hold
// exclusive access to nodes for the whole call.
func (s *Syncer) PollAndApply(ctx context.Context, nodes topology.NodeLookup, since float64) (Result, error) {
	rows, err := s.Fetch(ctx, since)
	if err != nil {
		return Result{Watermark: since}, err
	}
	return s.Apply(rows, nodes, since), nil
}
