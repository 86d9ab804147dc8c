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
	"sync"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/log"
)

const subscriberBuffer = 8

// Hub fans snapshots out to in-process subscribers. A subscriber that
// falls behind misses snapshots instead of blocking the publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]chan *topology.Snapshot
	logger      klog.Logger
}

var _ Publisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]chan *topology.Snapshot),
		logger:      log.GetLogger("hub"),
	}
}

// Subscribe registers a subscriber. It receives snapshots published after
// this call until Unsubscribe closes the channel.
func (h *Hub) Subscribe() (string, <-chan *topology.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New().String()
	ch := make(chan *topology.Snapshot, subscriberBuffer)
	h.subscribers[id] = ch
	h.logger.V(log.DebugV).Info("subscriber added", "id", id, "total", len(h.subscribers))
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subscribers[id]
	if !ok {
		return
	}
	close(ch)
	delete(h.subscribers, id)
	h.logger.V(log.DebugV).Info("subscriber removed", "id", id, "total", len(h.subscribers))
}

// Len returns the number of current subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) Publish(_ context.Context, snapshot *topology.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- snapshot:
		default:
			h.logger.Info("subscriber is behind, snapshot dropped", "id", id)
		}
	}
	return nil
}
