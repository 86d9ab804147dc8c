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
	"fmt"

	"github.com/spf13/cobra"

	"p2pcommmap/internal/store"
	"p2pcommmap/internal/topology"
	"p2pcommmap/pkg/log"
)

func seedCmd() *cobra.Command {
	var file string
	seedCmd := &cobra.Command{
		Use:     "seed",
		Short:   "create the tables and upsert devices from a YAML file",
		Example: "commmap seed --file devices.yaml --db-dsn node_database.db",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := runSeed(cmd.Context(), store.DatabaseConfig{Driver: conf.Database.Driver, DSN: conf.Database.DSN}, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d devices\n", n)
			return nil
		},
	}

	fs := seedCmd.Flags()
	fs.StringVarP(&file, "file", "f", "devices.yaml", "device file")
	fs.StringP("db-driver", "", store.DriverSQLite, "database driver (sqlite, mysql)")
	fs.StringP("db-dsn", "", "node_database.db", "database data source name")
	return seedCmd
}

// runSeed writes the devices of file after checking that they form a
// valid topology.
func runSeed(ctx context.Context, dbConf store.DatabaseConfig, file string) (int, error) {
	devices, err := store.LoadDeviceFile(file)
	if err != nil {
		return 0, err
	}
	records := make([]topology.DeviceRecord, 0, len(devices))
	for _, d := range devices {
		records = append(records, d.Record())
	}
	if err := topology.NewNodeStore().Load(records); err != nil {
		return 0, err
	}

	db, err := store.Open(dbConf, false)
	if err != nil {
		return 0, err
	}
	if err := store.Migrate(db); err != nil {
		return 0, err
	}
	if err := store.NewDeviceRepository(db).UpsertDevices(ctx, devices); err != nil {
		return 0, err
	}

	log.GetLogger("seed").Info("devices seeded", "file", file, "count", len(devices))
	return len(devices), nil
}
