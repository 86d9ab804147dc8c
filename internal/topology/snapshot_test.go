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

package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	s := loadedStore(t, threeNodeRecords())
	links := BuildLinks(s.All())
	n1, _ := s.Get(1)
	n2, _ := s.Get(2)
	n1.ApplyState(RuntimeState{KeyExchangePeers: []int{2}, InboundThroughput: 3.5, Active: true})
	n2.ApplyState(RuntimeState{KeyExchangePeers: []int{1}, InboundThroughput: 1.5, Active: true})
	require.NoError(t, RefreshLinks(links, s))

	snap := NewSnapshot(links, s.All())
	require.Len(t, snap.Links, 3)
	assert.Equal(t, LinkState{Connection: "1-2", Active: true, KeyExchange: true, ThroughputA: 3.5, ThroughputB: 1.5}, snap.Links[2])
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, snap.NodeActivity)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"links": [
			{"connection":"0-1","active":true,"keyExchange":false,"throughputA":0,"throughputB":3.5},
			{"connection":"0-2","active":true,"keyExchange":false,"throughputA":0,"throughputB":1.5},
			{"connection":"1-2","active":true,"keyExchange":true,"throughputA":3.5,"throughputB":1.5}
		],
		"nodeActivity": {"0":true,"1":true,"2":true}
	}`, string(data))

	t.Run("does not alias entity state", func(t *testing.T) {
		n1.Active = false
		assert.True(t, snap.NodeActivity[1])
		assert.True(t, snap.Links[2].Active)
	})
}

func TestNewMarkers(t *testing.T) {
	s := loadedStore(t, threeNodeRecords())
	markers := NewMarkers(s.All())
	require.Len(t, markers, 3)
	assert.Equal(t, Marker{Number: 0, Name: "Control Hub", Role: "hub", Pos: Position{Lat: 1.35, Lng: 103.94}}, markers[0])
	assert.Equal(t, "Gateway[1] Gateway A", markers[1].Name)
	assert.Equal(t, "gateway", markers[2].Role)
}
