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
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DeviceFile is the YAML layout accepted by LoadDeviceFile.
type DeviceFile struct {
	Devices []*Device `yaml:"devices"`
}

// LoadDeviceFile reads device rows from a YAML file.
func LoadDeviceFile(path string) ([]*Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read device file")
	}

	var f DeviceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse device file %s", path)
	}
	if len(f.Devices) == 0 {
		return nil, errors.Errorf("device file %s lists no devices", path)
	}
	return f.Devices, nil
}
