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

// Package rotate provides the logrus hook that writes log entries to size-rotated files.
package rotate

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the configuration for the rotate file hook.
type Config struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Level      logrus.Level
	Formatter  logrus.Formatter
}

// Hook writes the entries up to the configured level to the rotated log file.
type Hook struct {
	config Config
	w      io.WriteCloser
}

// maxCallerDepth bounds the stack walk for the first frame outside logrus
const maxCallerDepth = 20

// NewHook builds a new rotate file hook.
func NewHook(config Config) (*Hook, error) {
	if config.Filename == "" {
		return nil, fmt.Errorf("log file name is required")
	}
	if config.Formatter == nil {
		config.Formatter = &logrus.JSONFormatter{}
	}
	return &Hook{
		config: config,
		w: &lumberjack.Logger{
			Filename:   config.Filename,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
		},
	}, nil
}

// Levels determines log levels that for which the logs are written.
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels[:h.config.Level+1]
}

// Fire is called by logrus when it is about to write the log entry. The entry
// is enriched with the source location of the logging call.
func (h *Hook) Fire(entry *logrus.Entry) error {
	e := entry.WithField("source", caller())
	e.Level = entry.Level
	e.Message = entry.Message
	e.Time = entry.Time
	b, err := h.config.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}

// Close closes the current log file.
func (h *Hook) Close() error { return h.w.Close() }

func caller() string {
	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(4, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "sirupsen/logrus") {
			return fmt.Sprintf("%s:%d", shorten(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// shorten keeps the parent directory and the file name.
func shorten(file string) string {
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				return file[i+1:]
			}
		}
	}
	return file
}
