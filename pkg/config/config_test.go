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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromYamlFile(t *testing.T) {
	c := NewWithOpts(WithServe(), WithWatch())

	err := c.flags.Parse([]string{"--config-file=_fixtures/objexp.yml"})
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, err)
	require.NoError(t, c.TryLoadFile(c.GetConfigFile()))

	require.NoError(t, c.Init())
	require.NoError(t, c.Validate())

	assert.Equal(t, "npipe:///objexp", c.API.Transport)
	assert.Equal(t, time.Second*5, c.API.Timeout)
	assert.Equal(t, time.Millisecond*500, c.API.RefreshInterval)

	assert.Equal(t, uint32(33554432), c.Enum.ObjectsBufferSize)
	assert.Equal(t, uint32(65536), c.Enum.TypesBufferSize)
	assert.Equal(t, uint32(16777216), c.Enum.HandlesBufferSize)
	assert.Equal(t, time.Millisecond*25, c.Enum.ProbeTimeout)
	assert.Equal(t, uint16(40), c.Enum.ProbeTypeIndex)
	assert.Equal(t, uint32(0x20000), c.Enum.DupAccess)
	assert.Equal(t, time.Second*3, c.Enum.WatchInterval)
	assert.Len(t, c.Enum.Options(), 6)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Formatter)
	assert.Equal(t, 5, c.Log.MaxBackups)
}

func TestNewFromJsonFile(t *testing.T) {
	c := NewWithOpts(WithStats())

	err := c.flags.Parse([]string{"--config-file=_fixtures/objexp.json"})
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, err)
	require.NoError(t, c.TryLoadFile(c.GetConfigFile()))

	require.NoError(t, c.Init())
	require.NoError(t, c.Validate())

	assert.Equal(t, "localhost:9191", c.API.Transport)
	assert.Equal(t, time.Second*10, c.API.Timeout)
	assert.Equal(t, uint32(262144), c.Enum.TypesBufferSize)
	// defaults survive for the options missing in the file
	assert.Equal(t, uint32(1<<26), c.Enum.ObjectsBufferSize)
	assert.Equal(t, time.Millisecond*15, c.Enum.ProbeTimeout)
	assert.Equal(t, uint16(37), c.Enum.ProbeTypeIndex)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, c.flags.Parse([]string{"--config-file=_fixtures/missing.yml"}))
	require.Error(t, c.TryLoadFile(c.GetConfigFile()))

	require.NoError(t, c.Init())
	require.NoError(t, c.Validate())
	assert.Equal(t, time.Millisecond*10, c.Enum.ProbeTimeout)
	assert.Equal(t, uint16(37), c.Enum.ProbeTypeIndex)
	assert.Equal(t, uint32(0x20000), c.Enum.DupAccess)
	assert.Equal(t, time.Second*2, c.Enum.WatchInterval)
	assert.Equal(t, "localhost:8484", c.API.Transport)

	opts := c.Flatten()
	assert.Equal(t, "10ms", opts["enum.probe-timeout"])
	assert.Equal(t, "info", opts["logging.level"])
	assert.Contains(t, c.Print(), "enum.probe-type-index")
}

func TestInvalidFile(t *testing.T) {
	c := NewWithOpts()
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, c.flags.Parse([]string{"--config-file=_fixtures/invalid.yml"}))
	require.NoError(t, c.TryLoadFile(c.GetConfigFile()))
	require.Error(t, c.Validate())
}

func TestInitRejectsTinyBuffers(t *testing.T) {
	c := NewWithOpts()
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, c.flags.Parse([]string{"--enum.types-buffer-size=16"}))
	require.Error(t, c.Init())
}

func TestMissingDefaultFile(t *testing.T) {
	c := NewWithOpts()
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, c.flags.Parse([]string{}))
	assert.False(t, c.IsFileSet())
	if _, err := os.Stat(c.GetConfigFile()); err == nil {
		t.Skip("default config file is present")
	}
	require.NoError(t, c.TryLoadFile(c.GetConfigFile()))
}
