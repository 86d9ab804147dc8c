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
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"p2pcommmap/internal/store"
	"p2pcommmap/pkg/redis"
)

const (
	EnvPrefix         = "COMMMAP"
	DefaultConfigFile = "./commmap.yaml"
)

type Config struct {
	Listen   string               `mapstructure:"listen"`
	LogLevel string               `mapstructure:"log-level"`
	Database store.DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig           `mapstructure:"sync"`
	Redis    RedisConfig          `mapstructure:"redis"`
	Metrics  MetricsConfig        `mapstructure:"metrics"`
}

type SyncConfig struct {
	// Period is the refresh period in seconds.
	Period float64 `mapstructure:"period"`
}

type RedisConfig struct {
	redis.ClientConfig `mapstructure:",squash"`
	Channel            string `mapstructure:"channel"`
}

// Enabled reports whether snapshots are published to redis.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"listen":    "listen",
	"log-level": "log-level",
	"period":    "sync.period",
	"db-driver": "database.driver",
	"db-dsn":    "database.dsn",
	"redis":     "redis.addr",
}

type ConfigManager struct {
	v *viper.Viper
}

func NewConfigManager() *ConfigManager {
	v := viper.New()
	v.SetDefault("listen", ":5000")
	v.SetDefault("log-level", "info")
	v.SetDefault("database.driver", store.DriverSQLite)
	v.SetDefault("database.dsn", "node_database.db")
	v.SetDefault("sync.period", 10)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "commmap:snapshots")
	v.SetDefault("metrics.enabled", true)
	return &ConfigManager{v: v}
}

// Viper return viper instance.
func (cm *ConfigManager) Viper() *viper.Viper {
	return cm.v
}

// LoadConf merges defaults, the config file, COMMMAP_* environment
// variables and the flags of cmd, in increasing priority. A missing
// config file is only an error when it was named explicitly.
func (cm *ConfigManager) LoadConf(cmd *cobra.Command) (*Config, error) {
	v := cm.v
	v.SetConfigType("yaml")

	path, explicit := DefaultConfigFile, false
	if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
		path, explicit = f.Value.String(), true
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) Validate() error {
	if c.Sync.Period <= 0 {
		return errors.Errorf("sync.period must be positive, got %v", c.Sync.Period)
	}
	switch c.Database.Driver {
	case store.DriverSQLite, store.DriverMySQL:
	default:
		return errors.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Redis.Enabled() && c.Redis.Channel == "" {
		return errors.New("redis.channel must be set when redis.addr is")
	}
	return nil
}
