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

package maperrors

import "errors"

var (
	// ErrDataSource is returned when the relationship records cannot form a topology.
	ErrDataSource = errors.New("invalid device relationship data")
	// ErrNotFound is returned when a node id does not resolve in the node store.
	ErrNotFound = errors.New("node not found")
	// ErrUnknownNode marks a state record whose node id is not part of the topology.
	ErrUnknownNode = errors.New("state record references unknown node")
	// ErrInvalidPayload marks a state record whose payload cannot be decoded.
	ErrInvalidPayload = errors.New("invalid state payload")
	// ErrInvalidPeriod is returned for a non-positive refresh period.
	ErrInvalidPeriod = errors.New("refresh period must be positive")
)
