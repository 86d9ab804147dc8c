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

package log

import (
	"flag"
	"io"
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// Log levels accepted by SetLogLevel.
const (
	LevelSilent  = "silent"
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
	LevelVerbose = "verbose"
)

// DebugV is the klog verbosity used for per-record and per-link detail.
const DebugV = 4

// GetLogger returns a klog logger named after the component.
func GetLogger(name string) klog.Logger {
	return klog.Background().WithName(name)
}

// SetLogLevel configures klog verbosity and the stderr threshold from a
// level name. Unknown names fall back to info.
func SetLogLevel(level string) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)

	verbosity, threshold := levelSettings(level)
	if err := fs.Set("v", strconv.Itoa(verbosity)); err != nil {
		return err
	}
	if threshold == "INFO" {
		klog.SetOutput(os.Stderr)
		return fs.Set("logtostderr", "true")
	}

	// below info only the stderr threshold decides what is printed
	klog.SetOutput(io.Discard)
	if err := fs.Set("logtostderr", "false"); err != nil {
		return err
	}
	return fs.Set("stderrthreshold", threshold)
}

func levelSettings(level string) (int, string) {
	switch strings.ToLower(level) {
	case LevelSilent:
		return 0, "FATAL"
	case LevelError:
		return 0, "ERROR"
	case LevelWarning, "warn":
		return 0, "WARNING"
	case LevelVerbose, "debug":
		return DebugV, "INFO"
	default:
		return 0, "INFO"
	}
}

// IsVerbose reports whether level enables debug detail.
func IsVerbose(level string) bool {
	v, _ := levelSettings(level)
	return v >= DebugV
}
