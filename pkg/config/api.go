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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	transport       = "api.transport"
	timeout         = "api.timeout"
	refreshInterval = "api.refresh-interval"
)

// APIConfig contains API specific config options.
type APIConfig struct {
	// Transport specifies the underlying transport protocol for the API HTTP server.
	Transport string `json:"api.transport" yaml:"api.transport"`
	// Timeout determines the timeout for the API server responses
	Timeout time.Duration `json:"api.timeout" yaml:"api.timeout"`
	// RefreshInterval is the minimum interval between the enumerations triggered through the API.
	RefreshInterval time.Duration `json:"api.refresh-interval" yaml:"api.refresh-interval"`
}

// initFromViper initializes API configuration from Viper.
func (c *APIConfig) initFromViper(v *viper.Viper) {
	c.Transport = v.GetString(transport)
	c.Timeout = v.GetDuration(timeout)
	c.RefreshInterval = v.GetDuration(refreshInterval)
}

func (c *APIConfig) addFlags(flags *pflag.FlagSet, serve bool) {
	flags.String(transport, `localhost:8484`, "Specifies the underlying transport protocol for the API HTTP server")
	flags.Duration(timeout, time.Second*15, "Determines the timeout for the API server responses")
	if serve {
		flags.Duration(refreshInterval, time.Second, "Specifies the minimum interval between the enumerations triggered by the API refresh endpoint")
	}
}
