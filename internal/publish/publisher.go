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

package publish

import (
	"context"

	"github.com/pkg/errors"

	"p2pcommmap/internal/topology"
)

// EventName is the name snapshots are delivered under.
const EventName = "newrequest"

// Publisher delivers snapshots to subscribers on a best effort basis.
type Publisher interface {
	Publish(ctx context.Context, snapshot *topology.Snapshot) error
}

// Multi publishes to every publisher in order and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, snapshot *topology.Snapshot) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Errorf("%d publishers failed, first: %v", len(errs), errs[0])
	}
}
