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

package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type StateRepository interface {
	// ListSince returns state rows with a timestamp strictly greater than
	// watermark in ascending timestamp order.
	ListSince(ctx context.Context, watermark float64) ([]*DeviceState, error)
	Append(ctx context.Context, state *DeviceState) error
	CountStates(ctx context.Context) (int64, error)
}

var (
	_ StateRepository = (*stateRepository)(nil)
)

type stateRepository struct {
	*BaseRepository[DeviceState]
}

func NewStateRepository(db *gorm.DB) StateRepository {
	return &stateRepository{BaseRepository: NewBaseRepository[DeviceState](db)}
}

func (r *stateRepository) ListSince(ctx context.Context, watermark float64) ([]*DeviceState, error) {
	states, err := r.Find(ctx, TimeAfter(watermark))
	return states, errors.Wrapf(err, "list states after %v", watermark)
}

func (r *stateRepository) Append(ctx context.Context, state *DeviceState) error {
	return errors.Wrapf(r.Create(ctx, state), "append state of node %s", state.NodeID)
}

func (r *stateRepository) CountStates(ctx context.Context) (int64, error) {
	return r.Count(ctx)
}
