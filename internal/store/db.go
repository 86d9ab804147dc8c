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

package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"k8s.io/klog/v2"

	"p2pcommmap/pkg/log"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DatabaseConfig selects the driver and data source.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// klogWriter feeds gorm's logger into klog.
type klogWriter struct {
	logger klog.Logger
}

func (w klogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}

// Open connects to the configured database.
func Open(cfg DatabaseConfig, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	newLogger := logger.New(klogWriter{logger: log.GetLogger("gorm")}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Driver)
	}
	return db, nil
}

// Migrate creates the device and state tables if they do not exist.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&Device{}, &DeviceState{}), "migrate tables")
}
