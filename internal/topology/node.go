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
	"slices"

	"github.com/pkg/errors"

	"p2pcommmap/pkg/maperrors"
)

// HubRoleTag is the relationship-source role tag of a hub device.
const HubRoleTag = "HB"

// Role classifies a node at load time.
type Role int

const (
	RoleGateway Role = iota
	RoleHub
)

func (r Role) String() string {
	if r == RoleHub {
		return "hub"
	}
	return "gateway"
}

// RoleFromTag maps a relationship-source role tag to a Role.
func RoleFromTag(tag string) Role {
	if tag == HubRoleTag {
		return RoleHub
	}
	return RoleGateway
}

// Position is a GPS coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeviceRecord is one row of the device relationship source.
type DeviceRecord struct {
	ID        int
	Name      string
	IP        string
	Lat       float64
	Lng       float64
	Active    bool
	ReportsTo int
	RoleTag   string
}

// RuntimeState is the part of a node that the state log overwrites.
type RuntimeState struct {
	KeyExchangePeers   []int
	InboundThroughput  float64
	OutboundThroughput float64
	Active             bool
}

// Node is a gateway or hub device.
type Node struct {
	ID          int
	Name        string
	IPAddress   string
	Position    Position
	Role        Role
	ReportsToID int
	// PeerCandidateIDs is sorted ascending. A hub lists only itself.
	PeerCandidateIDs []int

	Active             bool
	InboundThroughput  float64
	OutboundThroughput float64
	KeyExchangePeers   map[int]struct{}
}

// IsHub reports whether the node is a hub.
func (n *Node) IsHub() bool {
	return n.Role == RoleHub
}

// ExchangesKeysWith reports whether the node lists id as a key-exchange peer.
func (n *Node) ExchangesKeysWith(id int) bool {
	_, ok := n.KeyExchangePeers[id]
	return ok
}

// ApplyState overwrites the runtime attributes of the node.
func (n *Node) ApplyState(st RuntimeState) {
	peers := make(map[int]struct{}, len(st.KeyExchangePeers))
	for _, id := range st.KeyExchangePeers {
		peers[id] = struct{}{}
	}
	n.KeyExchangePeers = peers
	n.InboundThroughput = st.InboundThroughput
	n.OutboundThroughput = st.OutboundThroughput
	n.Active = st.Active
}

// NodeStore holds the nodes of the topology keyed by id.
// It is not safe for concurrent use; the engine serializes access.
type NodeStore struct {
	nodes map[int]*Node
	ids   []int
}

func NewNodeStore() *NodeStore {
	return &NodeStore{nodes: make(map[int]*Node)}
}

// Load replaces the store content with nodes built from records. Nothing
// is applied when the records are empty, contain a duplicate id, or name a
// parent hub that is not part of the record set.
func (s *NodeStore) Load(records []DeviceRecord) error {
	if len(records) == 0 {
		return errors.Wrap(maperrors.ErrDataSource, "no device records")
	}

	nodes := make(map[int]*Node, len(records))
	ids := make([]int, 0, len(records))
	var gateways []int
	for _, rec := range records {
		if _, ok := nodes[rec.ID]; ok {
			return errors.Wrapf(maperrors.ErrDataSource, "duplicate device id %d", rec.ID)
		}
		n := &Node{
			ID:               rec.ID,
			Name:             rec.Name,
			IPAddress:        rec.IP,
			Position:         Position{Lat: rec.Lat, Lng: rec.Lng},
			Role:             RoleFromTag(rec.RoleTag),
			ReportsToID:      rec.ReportsTo,
			Active:           rec.Active,
			KeyExchangePeers: make(map[int]struct{}),
		}
		nodes[rec.ID] = n
		ids = append(ids, rec.ID)
		if !n.IsHub() {
			gateways = append(gateways, rec.ID)
		}
	}
	slices.Sort(ids)
	slices.Sort(gateways)

	for _, id := range ids {
		n := nodes[id]
		if n.IsHub() {
			n.PeerCandidateIDs = []int{id}
			continue
		}
		if n.ReportsToID == id {
			return errors.Wrapf(maperrors.ErrDataSource, "gateway %d reports to itself", id)
		}
		if _, ok := nodes[n.ReportsToID]; !ok {
			return errors.Wrapf(maperrors.ErrDataSource, "gateway %d reports to unknown node %d", id, n.ReportsToID)
		}
		peers := make([]int, 0, len(gateways)-1)
		for _, g := range gateways {
			if g != id {
				peers = append(peers, g)
			}
		}
		n.PeerCandidateIDs = peers
	}

	s.nodes = nodes
	s.ids = ids
	return nil
}

// Get returns the node with the given id.
func (s *NodeStore) Get(id int) (*Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, errors.Wrapf(maperrors.ErrNotFound, "node %d", id)
	}
	return n, nil
}

// All returns every node in ascending id order.
func (s *NodeStore) All() []*Node {
	out := make([]*Node, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.nodes[id])
	}
	return out
}

// RoleOf returns the role of the node with the given id.
func (s *NodeStore) RoleOf(id int) (Role, error) {
	n, err := s.Get(id)
	if err != nil {
		return RoleGateway, err
	}
	return n.Role, nil
}

// Len returns the number of nodes.
func (s *NodeStore) Len() int {
	return len(s.ids)
}
