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

type DeviceRepository interface {
	// ListDevices returns every device ordered by id.
	ListDevices(ctx context.Context) ([]*Device, error)
	UpsertDevices(ctx context.Context, devices []*Device) error
}

var (
	_ DeviceRepository = (*deviceRepository)(nil)
)

type deviceRepository struct {
	*BaseRepository[Device]
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{BaseRepository: NewBaseRepository[Device](db)}
}

func (r *deviceRepository) ListDevices(ctx context.Context) ([]*Device, error) {
	devices, err := r.Find(ctx, OrderByID())
	return devices, errors.Wrap(err, "list devices")
}

func (r *deviceRepository) UpsertDevices(ctx context.Context, devices []*Device) error {
	return errors.Wrap(r.Upsert(ctx, devices), "upsert devices")
}
