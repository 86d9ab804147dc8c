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

package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"p2pcommmap/internal/publish"
	"p2pcommmap/pkg/maperrors"
)

// PeriodRequest carries a new refresh period. Form posts use the
// rate-uptake field name of the map page.
type PeriodRequest struct {
	Seconds float64 `json:"seconds" form:"rate-uptake" binding:"required"`
}

type PeriodResponse struct {
	Seconds   float64 `json:"seconds"`
	State     string  `json:"state"`
	Watermark float64 `json:"watermark"`
}

func (s *Server) listMarkers() gin.HandlerFunc {
	return func(c *gin.Context) {
		WriteOK(c.JSON, s.topology.Markers())
	}
}

func (s *Server) getActivity() gin.HandlerFunc {
	return func(c *gin.Context) {
		WriteOK(c.JSON, s.topology.Activity())
	}
}

func (s *Server) getSnapshot() gin.HandlerFunc {
	return func(c *gin.Context) {
		WriteOK(c.JSON, s.topology.Snapshot())
	}
}

func (s *Server) getPeriod() gin.HandlerFunc {
	return func(c *gin.Context) {
		WriteOK(c.JSON, s.periodResponse())
	}
}

func (s *Server) setPeriod() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PeriodRequest
		if err := c.ShouldBind(&req); err != nil {
			WriteBadRequest(c.JSON, err.Error())
			return
		}

		if err := s.topology.SetPeriod(req.Seconds); err != nil {
			if errors.Is(err, maperrors.ErrInvalidPeriod) {
				WriteBadRequest(c.JSON, err.Error())
				return
			}
			WriteError(c.JSON, err.Error())
			return
		}
		WriteOK(c.JSON, s.periodResponse())
	}
}

func (s *Server) periodResponse() PeriodResponse {
	return PeriodResponse{
		Seconds:   s.topology.Period().Seconds(),
		State:     s.topology.State().String(),
		Watermark: s.topology.Watermark(),
	}
}

// streamEvents sends every published snapshot as a server-sent event
// until the client goes away.
func (s *Server) streamEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ch := s.subs.Subscribe()
		defer s.subs.Unsubscribe(id)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		ctx := c.Request.Context()
		c.Stream(func(w io.Writer) bool {
			select {
			case snapshot, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent(publish.EventName, snapshot)
				return true
			case <-ctx.Done():
				return false
			}
		})
	}
}
