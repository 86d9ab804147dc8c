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
	"slices"
)

// LinkKey is the canonical endpoint pair of a link, smaller id first.
type LinkKey struct {
	A int
	B int
}

// NewLinkKey returns the canonical key of the unordered pair {a, b}.
func NewLinkKey(a, b int) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey{A: a, B: b}
}

// String renders the key as "a-b".
func (k LinkKey) String() string {
	return fmt.Sprintf("%d-%d", k.A, k.B)
}

// Link is a communication link between two nodes. Key and Index never
// change after BuildLinks; the remaining fields are derived by RefreshLinks.
type Link struct {
	Index       int
	Key         LinkKey
	Active      bool
	KeyExchange bool
	ThroughputA float64
	ThroughputB float64
}

// BuildLinks derives the deduplicated link set. Report-to-hub edges of all
// gateways come first, then peer edges, both in ascending node id order;
// the first occurrence of a key wins its index. Self pairs never form a link.
func BuildLinks(nodes []*Node) []*Link {
	ordered := slices.Clone(nodes)
	slices.SortFunc(ordered, func(a, b *Node) int { return a.ID - b.ID })

	var links []*Link
	seen := make(map[LinkKey]struct{})
	add := func(a, b int) {
		if a == b {
			return
		}
		key := NewLinkKey(a, b)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		links = append(links, &Link{Index: len(links), Key: key})
	}

	for _, n := range ordered {
		if n.IsHub() {
			continue
		}
		add(n.ReportsToID, n.ID)
	}
	for _, n := range ordered {
		for _, p := range n.PeerCandidateIDs {
			add(n.ID, p)
		}
	}
	return links
}
