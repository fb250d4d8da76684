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

package bootstrap

import (
	"fmt"

	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/util/log"
	"github.com/sirupsen/logrus"
)

// InitConfigAndLogger resolves the settings from the config file, the environment and the
// flags, validates them and configures the logger. Failing to read the default config file
// leaves the flag defaults in place. The failure is logged once the logger is set up.
func InitConfigAndLogger(cfg *config.Config) error {
	fallback, err := loadFile(cfg)
	if err != nil {
		return err
	}

	steps := []func() error{
		cfg.Init,
		cfg.Validate,
		func() error { return log.InitFromConfig(cfg.Log) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if fallback != nil {
		logrus.WithField("file", cfg.File()).Warnf("using default settings: %v", fallback)
	}
	return nil
}

// loadFile reads the config file. The file requested through the flag or the environment
// must load. For the default file, the read error is handed back as the fallback reason.
func loadFile(cfg *config.Config) (fallback error, err error) {
	err = cfg.TryLoadFile(cfg.File())
	switch {
	case err == nil:
		return nil, nil
	case cfg.IsFileSet():
		return nil, fmt.Errorf("unable to load config file %s: %w", cfg.File(), err)
	default:
		return err, nil
	}
}
