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
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Flatten returns the effective config options keyed by their dotted names.
func (c *Config) Flatten() map[string]string {
	opts := make(map[string]string)
	flatten("", c.viper.AllSettings(), opts)
	return opts
}

func flatten(prefix string, m map[string]interface{}, opts map[string]string) {
	for k, v := range m {
		key := joinKey(prefix, k)
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, opts)
		case []interface{}:
			items := make([]string, len(val))
			for i, item := range val {
				items[i] = fmt.Sprintf("%v", item)
			}
			opts[key] = strings.Join(items, ",")
		default:
			opts[key] = fmt.Sprintf("%v", val)
		}
	}
}

// Print returns the table with all the config options sorted by name.
func (c *Config) Print() string {
	opts := c.Flatten()
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Option", "Value"})
	for _, k := range keys {
		if opts[k] == "" {
			continue
		}
		t.AppendRow(table.Row{k, opts[k]})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}
