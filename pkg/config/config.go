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

// Package config builds the configuration from the configuration file, environment
// variables and command line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rabbitstack/objexp/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config-file"
)

// Config stores configuration options for fine-tuning the behaviour of the object enumerations.
type Config struct {
	// Enum contains the settings of the object, type and handle enumerations.
	Enum EnumConfig `json:"enum" yaml:"enum"`
	// API stores global HTTP API preferences
	API APIConfig `json:"api" yaml:"api"`
	// Log contains log-specific configuration options
	Log log.Config `json:"logging" yaml:"logging"`

	flags *pflag.FlagSet
	viper *viper.Viper
	opts  *Options
}

// Options determines which config flags are toggled depending on the command type.
type Options struct {
	serve bool
	stats bool
	watch bool
}

// Option is the type alias for the config option.
type Option func(*Options)

// WithServe determines the serve command is executed.
func WithServe() Option {
	return func(o *Options) {
		o.serve = true
	}
}

// WithStats determines the stats command is executed.
func WithStats() Option {
	return func(o *Options) {
		o.stats = true
	}
}

// WithWatch determines the watch command is executed.
func WithWatch() Option {
	return func(o *Options) {
		o.watch = true
	}
}

// NewWithOpts builds a new configuration store from a variety of sources such as configuration files,
// environment variables or command line flags.
func NewWithOpts(options ...Option) *Config {
	opts := &Options{}

	for _, opt := range options {
		opt(opts)
	}

	v := viper.New()
	v.SetEnvPrefix("objexp")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	c := &Config{
		Enum:  EnumConfig{},
		API:   APIConfig{},
		Log:   log.Config{},
		viper: v,
		flags: new(pflag.FlagSet),
		opts:  opts,
	}

	c.addFlags()

	return c
}

// New builds the configuration store with the flags of all commands.
func New() *Config { return NewWithOpts(WithServe(), WithStats(), WithWatch()) }

// GetConfigFile gets the path of the configuration file from Viper value.
func (c Config) GetConfigFile() string {
	return c.viper.GetString(configFile)
}

// MustViperize adds the flag set to the Cobra command and binds them within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// Init setups the configuration state from Viper.
func (c *Config) Init() error {
	c.Enum.initFromViper(c.viper)
	c.API.initFromViper(c.viper)
	c.Log.InitFromViper(c.viper)
	return c.Enum.check()
}

// TryLoadFile attempts to load the configuration file from specified path on the file system.
// The missing default configuration file is not an error.
func (c *Config) TryLoadFile(file string) error {
	if _, err := os.Stat(file); err != nil && errors.Is(err, os.ErrNotExist) && !c.IsFileSet() {
		return nil
	}
	c.viper.SetConfigFile(file)
	return c.viper.ReadInConfig()
}

// Validate ensures that all configuration options provided by user have the expected values. It returns
// a list of validation errors prefixed with the offending configuration property/flag.
func (c *Config) Validate() error {
	// we'll first validate the structure and values of the config file
	file := c.viper.GetString(configFile)
	if _, err := os.Stat(file); err == nil {
		out, err := readFile(file)
		if err != nil {
			return err
		}
		valid, errs := validate(out)
		if !valid || len(errs) > 0 {
			return fmt.Errorf("invalid config: %w", errors.Join(errs...))
		}
	}
	// now validate the Viper config flags
	valid, errs := validate(c.viper.AllSettings())
	if !valid || len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsFileSet determines if the config file location was given explicitly
// through the command line flag or the environment.
func (c *Config) IsFileSet() bool {
	if f := c.flags.Lookup(configFile); f != nil && f.Changed {
		return true
	}
	_, ok := os.LookupEnv("OBJEXP_CONFIG_FILE")
	return ok
}

// File returns the config file path.
func (c *Config) File() string { return c.viper.GetString(configFile) }

func readFile(file string) (interface{}, error) {
	var out interface{}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &out)
	case ".json":
		err = json.Unmarshal(b, &out)
	default:
		return nil, fmt.Errorf("%s is not a supported config file extension", filepath.Ext(file))
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't read the config file: %v", err)
	}
	return out, nil
}

// DefaultConfigFile returns the configuration file located in the config directory next to the executable.
func DefaultConfigFile() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("config", "objexp.yml")
	}
	return filepath.Join(filepath.Dir(exe), "..", "config", "objexp.yml")
}

func (c *Config) addFlags() {
	c.flags.String(configFile, DefaultConfigFile(), "Indicates the location of the configuration file")
	c.Enum.addFlags(c.flags, c.opts.watch)
	if c.opts.serve || c.opts.stats {
		c.API.addFlags(c.flags, c.opts.serve)
	}
	c.Log.AddFlags(c.flags)
}
