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

package syncer

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/maperrors"
)

// payload is the JSON document stored in a state row.
type payload struct {
	ComTo         []int           `json:"comTo"`
	ThroughputIn  float64         `json:"throughputIn"`
	ThroughputOut float64         `json:"throughputOut"`
	Active        json.RawMessage `json:"active"`
	// ActF is the older name of Active, written as 0/1.
	ActF json.RawMessage `json:"actF"`
}

// DecodePayload parses a state row payload into the runtime state it carries.
func DecodePayload(raw string) (topology.RuntimeState, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return topology.RuntimeState{}, errors.Wrapf(maperrors.ErrInvalidPayload, "%v", err)
	}

	flag := p.Active
	if len(flag) == 0 {
		flag = p.ActF
	}
	active, err := parseFlag(flag)
	if err != nil {
		return topology.RuntimeState{}, err
	}

	return topology.RuntimeState{
		KeyExchangePeers:   p.ComTo,
		InboundThroughput:  p.ThroughputIn,
		OutboundThroughput: p.ThroughputOut,
		Active:             active,
	}, nil
}

// parseFlag accepts a JSON bool or number. A missing flag is false.
func parseFlag(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return false, errors.Wrapf(maperrors.ErrInvalidPayload, "active flag %s", raw)
	}
	return n != 0, nil
}
