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
	"fmt"
	"strings"
)

// LinkState is the published form of a link.
type LinkState struct {
	Connection  string  `json:"connection"`
	Active      bool    `json:"active"`
	KeyExchange bool    `json:"keyExchange"`
	ThroughputA float64 `json:"throughputA"`
	ThroughputB float64 `json:"throughputB"`
}

// Snapshot is a point-in-time view of link and node activity state.
type Snapshot struct {
	Links        []LinkState  `json:"links"`
	NodeActivity map[int]bool `json:"nodeActivity"`
}

// NewSnapshot copies the current link and node state. It does not modify
// either collection.
func NewSnapshot(links []*Link, nodes []*Node) *Snapshot {
	s := &Snapshot{
		Links:        make([]LinkState, 0, len(links)),
		NodeActivity: make(map[int]bool, len(nodes)),
	}
	for _, l := range links {
		s.Links = append(s.Links, LinkState{
			Connection:  l.Key.String(),
			Active:      l.Active,
			KeyExchange: l.KeyExchange,
			ThroughputA: l.ThroughputA,
			ThroughputB: l.ThroughputB,
		})
	}
	for _, n := range nodes {
		s.NodeActivity[n.ID] = n.Active
	}
	return s
}

// Marker is a map marker for one node.
type Marker struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Pos    Position `json:"pos"`
}

// NewMarkers lists map markers in node order. Gateway names carry a
// "Gateway[<id>] " prefix unless they already name a hub.
func NewMarkers(nodes []*Node) []Marker {
	markers := make([]Marker, 0, len(nodes))
	for _, n := range nodes {
		name := n.Name
		if !strings.Contains(name, "Hub") {
			name = fmt.Sprintf("Gateway[%d] %s", n.ID, name)
		}
		markers = append(markers, Marker{
			Number: n.ID,
			Name:   name,
			Role:   n.Role.String(),
			Pos:    n.Position,
		})
	}
	return markers
}
