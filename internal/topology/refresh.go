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

// NodeLookup resolves node ids.
type NodeLookup interface {
	Get(id int) (*Node, error)
}

type linkState struct {
	active      bool
	keyExchange bool
	throughputA float64
	throughputB float64
}

// RefreshLinks recomputes the derived attributes of every link from the
// current node state. If any endpoint does not resolve, the error is
// returned and no link is modified.
func RefreshLinks(links []*Link, nodes NodeLookup) error {
	states := make([]linkState, len(links))
	for i, l := range links {
		a, err := nodes.Get(l.Key.A)
		if err != nil {
			return err
		}
		b, err := nodes.Get(l.Key.B)
		if err != nil {
			return err
		}

		st := linkState{
			active:      a.Active && b.Active,
			keyExchange: a.ExchangesKeysWith(b.ID) && b.ExchangesKeysWith(a.ID),
		}
		if st.active {
			st.throughputA = a.InboundThroughput
			st.throughputB = b.InboundThroughput
		}
		states[i] = st
	}

	for i, l := range links {
		l.Active = states[i].active
		l.KeyExchange = states[i].keyExchange
		l.ThroughputA = states[i].throughputA
		l.ThroughputB = states[i].throughputB
	}
	return nil
}
