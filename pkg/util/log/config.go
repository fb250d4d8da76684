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

package log

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFilename is the name of the log file inside the logs directory.
const DefaultFilename = "objexp.log"

const (
	keyLevel      = "logging.level"
	keyMaxAge     = "logging.max-age"
	keyMaxBackups = "logging.max-backups"
	keyMaxSize    = "logging.max-size"
	keyFormatter  = "logging.formatter"
	keyPath       = "logging.path"
	keyFilename   = "logging.filename"
	keyStdout     = "logging.log-stdout"
)

// setting is the logging flag along with its default value.
type setting struct {
	key   string
	value any
	usage string
}

var settings = []setting{
	{keyLevel, "info", "Minimum level of the emitted log lines"},
	{keyMaxAge, 0, "Days the rotated log files are kept for. Rotated files are never removed by age when zero"},
	{keyMaxBackups, 5, "Number of rotated log files to keep"},
	{keyMaxSize, 50, "Size in megabytes the log file reaches before it is rotated"},
	{keyFormatter, "text", "Log line format (json|text)"},
	{keyPath, "", "Directory the log files are written to. Defaults to the logs directory next to the binary"},
	{keyFilename, DefaultFilename, "Name of the log file"},
	{keyStdout, false, "Writes the log lines to standard output besides the log file"},
}

// Config drives the logger setup.
type Config struct {
	Level string `json:"logging.level" yaml:"logging.level"`
	// MaxAge is measured in days from the timestamp in the rotated file name.
	MaxAge     int `json:"logging.max-age" yaml:"logging.max-age"`
	MaxBackups int `json:"logging.max-backups" yaml:"logging.max-backups"`
	// MaxSize is expressed in megabytes.
	MaxSize   int    `json:"logging.max-size" yaml:"logging.max-size"`
	Formatter string `json:"logging.formatter" yaml:"logging.formatter"`
	Path      string `json:"logging.path" yaml:"logging.path"`
	Filename  string `json:"logging.filename" yaml:"logging.filename"`
	LogStdout bool   `json:"logging.log-stdout" yaml:"logging.log-stdout"`
}

// InitFromViper populates the logging settings from Viper.
func (c *Config) InitFromViper(v *viper.Viper) {
	*c = Config{
		Level:      v.GetString(keyLevel),
		MaxAge:     v.GetInt(keyMaxAge),
		MaxBackups: v.GetInt(keyMaxBackups),
		MaxSize:    v.GetInt(keyMaxSize),
		Formatter:  v.GetString(keyFormatter),
		Path:       v.GetString(keyPath),
		Filename:   v.GetString(keyFilename),
		LogStdout:  v.GetBool(keyStdout),
	}
}

// AddFlags registers the logging flags.
func (c *Config) AddFlags(flags *pflag.FlagSet) {
	for _, s := range settings {
		switch v := s.value.(type) {
		case string:
			flags.String(s.key, v, s.usage)
		case int:
			flags.Int(s.key, v, s.usage)
		case bool:
			flags.Bool(s.key, v, s.usage)
		default:
			panic(fmt.Sprintf("unsupported type %T of the %s logging flag", v, s.key))
		}
	}
}
