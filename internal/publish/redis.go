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
	"encoding/json"

	"github.com/pkg/errors"

	"p2pcommmap/internal/topology"
)

// LatestSuffix is appended to the channel name to form the key holding the
// last published snapshot.
const LatestSuffix = ":latest"

// RedisClient is the subset of pkg/redis.Client used for publishing.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) (int64, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// RedisPublisher publishes snapshot JSON on a pub/sub channel and keeps the
// last one under <channel>:latest.
type RedisPublisher struct {
	client  RedisClient
	channel string
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client RedisClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, snapshot *topology.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := p.client.Set(ctx, p.channel+LatestSuffix, data); err != nil {
		return errors.Wrap(err, "store latest snapshot")
	}
	if _, err := p.client.Publish(ctx, p.channel, data); err != nil {
		return errors.Wrapf(err, "publish snapshot on %s", p.channel)
	}
	return nil
}
