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
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/log"
	"p2pcommmap/pkg/loop"
)

const (
	PREFIX = "/api/v1/"
)

// Topology is the read and control surface of the sync engine.
type Topology interface {
	Markers() []topology.Marker
	Activity() map[int]bool
	Snapshot() *topology.Snapshot
	Period() time.Duration
	SetPeriod(seconds float64) error
	State() loop.State
	Watermark() float64
}

// Subscriptions hands out snapshot streams.
type Subscriptions interface {
	Subscribe() (string, <-chan *topology.Snapshot)
	Unsubscribe(id string)
}

// Server serves the map API over HTTP.
type Server struct {
	*gin.Engine
	logger   klog.Logger
	listen   string
	topology Topology
	subs     Subscriptions
}

type ServerConfig struct {
	Listen        string
	Topology      Topology
	Subscriptions Subscriptions
	EnableMetrics bool
}

func NewServer(cfg *ServerConfig) *Server {
	e := gin.New()
	s := &Server{
		Engine:   e,
		logger:   log.GetLogger("http"),
		listen:   cfg.Listen,
		topology: cfg.Topology,
		subs:     cfg.Subscriptions,
	}
	e.Use(gin.Recovery(), s.accessLog())
	s.initRoute(cfg.EnableMetrics)
	return s
}

func (s *Server) initRoute(enableMetrics bool) {
	s.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.GET(PREFIX+"markers", s.listMarkers())
	s.GET(PREFIX+"activity", s.getActivity())
	s.GET(PREFIX+"snapshot", s.getSnapshot())
	s.GET(PREFIX+"period", s.getPeriod())
	s.PUT(PREFIX+"period", s.setPeriod())
	s.GET(PREFIX+"events", s.streamEvents())

	if enableMetrics {
		s.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.listen,
		Handler: s.Engine,
		// event streams end when ctx is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.V(log.DebugV).Info("request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "latency", time.Since(start))
	}
}
