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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"p2pcommmap/internal/config"
	"p2pcommmap/pkg/log"
)

var conf *config.Config

func newRootCmd() *cobra.Command {
	cfgManager := config.NewConfigManager()
	rootCmd := &cobra.Command{
		Use:           "commmap",
		Short:         "commmap: gateway communication map\n Keeps the peer-to-peer link state of a gateway fleet in sync with its state log.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfgManager.LoadConf(cmd)
			if err != nil {
				return err
			}
			conf = c
			return log.SetLogLevel(conf.LogLevel)
		},
	}

	fs := rootCmd.PersistentFlags()
	fs.StringP("config", "c", config.DefaultConfigFile, "config file")
	fs.StringP("log-level", "", "info", "log level (silent, error, warning, info, verbose)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// Execute executes the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
