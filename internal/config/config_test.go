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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	fs := cmd.Flags()
	fs.String("config", DefaultConfigFile, "")
	fs.String("listen", ":5000", "")
	fs.String("log-level", "info", "")
	fs.Float64("period", 10, "")
	fs.String("db-dsn", "", "")
	require.NoError(t, fs.Parse(args))
	return cmd
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConf_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	conf, err := NewConfigManager().LoadConf(newCommand(t))
	require.NoError(t, err)
	assert.Equal(t, ":5000", conf.Listen)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, "sqlite", conf.Database.Driver)
	assert.Equal(t, "node_database.db", conf.Database.DSN)
	assert.Equal(t, 10.0, conf.Sync.Period)
	assert.False(t, conf.Redis.Enabled())
	assert.Equal(t, "commmap:snapshots", conf.Redis.Channel)
	assert.True(t, conf.Metrics.Enabled)
}

func TestLoadConf_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen: ":7000"
sync:
  period: 3
database:
  driver: mysql
  dsn: "user:pass@tcp(127.0.0.1:3306)/commmap"
redis:
  addr: "127.0.0.1:6379"
  db: 2
metrics:
  enabled: false
`), 0o600))

	t.Setenv("COMMMAP_SYNC_PERIOD", "4")
	t.Setenv("COMMMAP_LOG_LEVEL", "verbose")

	conf, err := NewConfigManager().LoadConf(newCommand(t, "--config", path, "--listen", ":9000"))
	require.NoError(t, err)
	assert.Equal(t, ":9000", conf.Listen)
	assert.Equal(t, 4.0, conf.Sync.Period)
	assert.Equal(t, "verbose", conf.LogLevel)
	assert.Equal(t, "mysql", conf.Database.Driver)
	assert.Equal(t, "user:pass@tcp(127.0.0.1:3306)/commmap", conf.Database.DSN)
	assert.True(t, conf.Redis.Enabled())
	assert.Equal(t, "127.0.0.1:6379", conf.Redis.Addr)
	assert.Equal(t, 2, conf.Redis.DB)
	assert.False(t, conf.Metrics.Enabled)
}

func TestLoadConf_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := NewConfigManager().LoadConf(newCommand(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
	})

	t.Run("non-positive period", func(t *testing.T) {
		chdir(t, t.TempDir())
		_, err := NewConfigManager().LoadConf(newCommand(t, "--period", "0"))
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("COMMMAP_DATABASE_DRIVER", "postgres")
		_, err := NewConfigManager().LoadConf(newCommand(t))
		require.Error(t, err)
	})
}
