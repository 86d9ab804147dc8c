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

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"p2pcommmap/internal/topology"
)

// Cycle results.
const (
	ResultOK         = "ok"
	ResultFetchError = "fetch_error"
	ResultFatal      = "fatal"
)

var (
	// --- sync loop ---
	SyncCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commmap_sync_cycles_total",
		Help: "Number of synchronization cycles by result",
	}, []string{"result"})

	SyncCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "commmap_sync_cycle_duration_seconds",
		Help:    "Time spent in one synchronization cycle",
		Buckets: prometheus.DefBuckets,
	})

	StateWatermark = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "commmap_state_watermark_seconds",
		Help: "Timestamp of the newest applied state record",
	})

	StateRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commmap_state_records_total",
		Help: "State records read from the log by outcome",
	}, []string{"outcome"}) // outcome: applied, skipped

	PublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commmap_publish_errors_total",
		Help: "Snapshots that could not be published",
	})

	// --- topology ---
	LinkActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "commmap_link_active",
		Help: "Link status (1: both endpoints active, 0: otherwise)",
	}, []string{"connection"})

	LinkKeyExchange = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "commmap_link_key_exchange",
		Help: "Mutual key exchange on the link (1: established)",
	}, []string{"connection"})

	LinkThroughput = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "commmap_link_throughput_mbps",
		Help: "Inbound throughput of a link endpoint in Mbps",
	}, []string{"connection", "endpoint"}) // endpoint: a, b

	NodeActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "commmap_node_active",
		Help: "Node activity (1: active, 0: inactive)",
	}, []string{"node_id"})
)

func init() {
	prometheus.MustRegister(
		SyncCycles, SyncCycleDuration, StateWatermark, StateRecords, PublishErrors,
		LinkActive, LinkKeyExchange, LinkThroughput, NodeActive,
	)
}

// ObserveCycle records the outcome of one cycle.
func ObserveCycle(result string, started time.Time) {
	SyncCycles.WithLabelValues(result).Inc()
	SyncCycleDuration.Observe(time.Since(started).Seconds())
}

// ObserveRecords records one apply pass.
func ObserveRecords(applied, skipped int, watermark float64) {
	StateRecords.WithLabelValues("applied").Add(float64(applied))
	StateRecords.WithLabelValues("skipped").Add(float64(skipped))
	StateWatermark.Set(watermark)
}

// ObserveSnapshot exports the link and node state of a snapshot.
func ObserveSnapshot(s *topology.Snapshot) {
	for _, l := range s.Links {
		LinkActive.WithLabelValues(l.Connection).Set(boolValue(l.Active))
		LinkKeyExchange.WithLabelValues(l.Connection).Set(boolValue(l.KeyExchange))
		LinkThroughput.WithLabelValues(l.Connection, "a").Set(l.ThroughputA)
		LinkThroughput.WithLabelValues(l.Connection, "b").Set(l.ThroughputB)
	}
	for id, active := range s.NodeActivity {
		NodeActive.WithLabelValues(strconv.Itoa(id)).Set(boolValue(active))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
