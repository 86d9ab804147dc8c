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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"p2pcommmap/internal/config"
	"p2pcommmap/internal/engine"
	"p2pcommmap/internal/publish"
	"p2pcommmap/internal/server"
	"p2pcommmap/internal/store"
	"p2pcommmap/pkg/log"
	"p2pcommmap/pkg/redis"
)

func serveCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "load the topology and serve the communication map",
		Example: "commmap serve --db-dsn node_database.db --period 5 --redis 127.0.0.1:6379",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, conf)
		},
	}

	fs := serveCmd.Flags()
	fs.StringP("listen", "l", ":5000", "http listen address")
	fs.Float64P("period", "p", 10, "refresh period in seconds")
	fs.StringP("db-driver", "", store.DriverSQLite, "database driver (sqlite, mysql)")
	fs.StringP("db-dsn", "", "node_database.db", "database data source name")
	fs.StringP("redis", "", "", "redis address to publish snapshots to, empty to disable")
	return serveCmd
}

func runServe(ctx context.Context, conf *config.Config) error {
	logger := log.GetLogger("serve")
	verbose := log.IsVerbose(conf.LogLevel)
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(conf.Database, verbose)
	if err != nil {
		return err
	}

	hub := publish.NewHub()
	publishers := publish.Multi{hub}
	if conf.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, &conf.Redis.ClientConfig)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publishers = append(publishers, publish.NewRedisPublisher(rdb, conf.Redis.Channel))
		logger.Info("publishing snapshots to redis", "addr", conf.Redis.Addr, "channel", conf.Redis.Channel)
	}

	eng, err := engine.New(engine.Options{
		Devices:   store.NewDeviceRepository(db),
		States:    store.NewStateRepository(db),
		Publisher: publishers,
		Period:    time.Duration(conf.Sync.Period * float64(time.Second)),
	})
	if err != nil {
		return err
	}
	if err := eng.Load(ctx); err != nil {
		return err
	}

	hs := server.NewServer(&server.ServerConfig{
		Listen:        conf.Listen,
		Topology:      eng,
		Subscriptions: hub,
		EnableMetrics: conf.Metrics.Enabled,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		eng.Start(ctx)
		select {
		case <-ctx.Done():
			eng.Stop()
			return nil
		case <-eng.Done():
			return eng.Err()
		}
	})

	g.Go(func() error {
		return hs.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(err, "commmap stopped")
		return err
	}
	logger.Info("commmap stopped")
	return nil
}
