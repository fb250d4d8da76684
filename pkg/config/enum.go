/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"time"

	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	objectsBufferSize = "enum.objects-buffer-size"
	typesBufferSize   = "enum.types-buffer-size"
	handlesBufferSize = "enum.handles-buffer-size"
	probeTimeout      = "enum.probe-timeout"
	probeTypeIndex    = "enum.probe-type-index"
	dupAccess         = "enum.dup-access"
	watchInterval     = "enum.watch-interval"

	minBufferSize        = 1024
	maxTypeIndex         = 255
	defaultWatchInterval = time.Second * 2
)

// EnumConfig contains the settings that influence the behaviour of the enumerations.
type EnumConfig struct {
	// ObjectsBufferSize is the initial size of the buffer for the system objects query.
	ObjectsBufferSize uint32 `json:"enum.objects-buffer-size" yaml:"enum.objects-buffer-size"`
	// TypesBufferSize is the initial size of the buffer for the object types query.
	TypesBufferSize uint32 `json:"enum.types-buffer-size" yaml:"enum.types-buffer-size"`
	// HandlesBufferSize is the initial size of the buffer for the system handle table query.
	HandlesBufferSize uint32 `json:"enum.handles-buffer-size" yaml:"enum.handles-buffer-size"`
	// ProbeTimeout bounds the name queries that may block indefinitely.
	ProbeTimeout time.Duration `json:"enum.probe-timeout" yaml:"enum.probe-timeout"`
	// ProbeTypeIndex is the index of the type whose name queries are probed.
	ProbeTypeIndex uint16 `json:"enum.probe-type-index" yaml:"enum.probe-type-index"`
	// DupAccess is the access mask requested when duplicating handles for the name query.
	DupAccess uint32 `json:"enum.dup-access" yaml:"enum.dup-access"`
	// WatchInterval is the interval between the refreshes of the watch command.
	WatchInterval time.Duration `json:"enum.watch-interval" yaml:"enum.watch-interval"`
}

func (c *EnumConfig) initFromViper(v *viper.Viper) {
	c.ObjectsBufferSize = v.GetUint32(objectsBufferSize)
	c.TypesBufferSize = v.GetUint32(typesBufferSize)
	c.HandlesBufferSize = v.GetUint32(handlesBufferSize)
	c.ProbeTimeout = v.GetDuration(probeTimeout)
	c.ProbeTypeIndex = uint16(v.GetUint32(probeTypeIndex))
	c.DupAccess = v.GetUint32(dupAccess)
	c.WatchInterval = v.GetDuration(watchInterval)
}

func (c *EnumConfig) addFlags(flags *pflag.FlagSet, watch bool) {
	flags.Int(objectsBufferSize, int(record.ObjectsBufferSize), "Specifies the initial size in bytes of the buffer for the system objects query. The buffer is grown as needed")
	flags.Int(typesBufferSize, int(record.TypesBufferSize), "Specifies the initial size in bytes of the buffer for the object types query. The buffer is grown as needed")
	flags.Int(handlesBufferSize, int(record.HandlesBufferSize), "Specifies the initial size in bytes of the buffer for the system handle table query. The buffer is grown as needed")
	flags.Duration(probeTimeout, handle.DefaultProbeTimeout, "Determines the timeout of the object name queries that may hang indefinitely")
	flags.Int(probeTypeIndex, int(objmgr.DefaultProbeTypeIndex), "Specifies the index of the object type whose name queries are bounded by the probe timeout")
	flags.Int(dupAccess, int(handle.QueryAccess), "Specifies the access mask requested when duplicating handles for the object name query")
	if watch {
		flags.Duration(watchInterval, defaultWatchInterval, "Specifies the interval between consecutive enumerations in watch mode")
	}
}

// check verifies the values that can't be expressed in the schema.
func (c *EnumConfig) check() error {
	for key, size := range map[string]uint32{
		objectsBufferSize: c.ObjectsBufferSize,
		typesBufferSize:   c.TypesBufferSize,
		handlesBufferSize: c.HandlesBufferSize,
	} {
		if size < minBufferSize {
			return fmt.Errorf("%s must be at least %d bytes", key, minBufferSize)
		}
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%s must be positive", probeTimeout)
	}
	return nil
}

// Options returns the object manager options derived from the config.
func (c EnumConfig) Options() []objmgr.Option {
	return []objmgr.Option{
		objmgr.WithObjectsBufferSize(c.ObjectsBufferSize),
		objmgr.WithTypesBufferSize(c.TypesBufferSize),
		objmgr.WithHandlesBufferSize(c.HandlesBufferSize),
		objmgr.WithProbeTimeout(c.ProbeTimeout),
		objmgr.WithProbeTypeIndex(c.ProbeTypeIndex),
		objmgr.WithDupAccess(c.DupAccess),
	}
}
