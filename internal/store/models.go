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

import "p2pcommmap/internal/topology"

// Device is a row of the device relationship table.
type Device struct {
	ID     int     `gorm:"column:id;primaryKey;autoIncrement:false" yaml:"id"`
	Name   string  `gorm:"column:name;not null" yaml:"name"`
	IPAddr string  `gorm:"column:ipAddr;not null" yaml:"ipAddr"`
	Lat    float64 `gorm:"column:lat;not null" yaml:"lat"`
	Lng    float64 `gorm:"column:lng;not null" yaml:"lng"`
	ActF   bool    `gorm:"column:actF;not null" yaml:"actF"`
	RptTo  int     `gorm:"column:rptTo;not null" yaml:"rptTo"`
	Type   string  `gorm:"column:type;not null" yaml:"type"`
}

func (Device) TableName() string {
	return "gatewayInfo"
}

// Record converts the row to a topology device record.
func (d *Device) Record() topology.DeviceRecord {
	return topology.DeviceRecord{
		ID:        d.ID,
		Name:      d.Name,
		IP:        d.IPAddr,
		Lat:       d.Lat,
		Lng:       d.Lng,
		Active:    d.ActF,
		ReportsTo: d.RptTo,
		RoleTag:   d.Type,
	}
}

// DeviceState is a row of the append-only state log. Time is a unix
// timestamp in seconds and is unique.
type DeviceState struct {
	Time       float64 `gorm:"column:time;primaryKey;autoIncrement:false"`
	NodeID     string  `gorm:"column:id;not null"`
	UpdateInfo string  `gorm:"column:updateInfo;not null"`
}

func (DeviceState) TableName() string {
	return "gatewayState"
}
