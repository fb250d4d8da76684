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
	"bytes"
	"text/template"
)

var schema = `
{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"api": {
			"type": "object",
			"properties": {
				"transport": 		{"type": "string", "minLength": 3},
				"timeout":			{"type": "string", "minLength": 2, "pattern": "^[0-9]+(ms|s|m)$"},
				"refresh-interval":	{"type": "string", "minLength": 2, "pattern": "^[0-9]+(ms|s|m)$"}
			},
			"additionalProperties": false
		},
		"config-file": 						{"type": "string"},
		"enum": {
			"type": "object",
			"properties": {
				"objects-buffer-size":		{"type": "integer", "minimum": {{ .MinBufferSize }}},
				"types-buffer-size":		{"type": "integer", "minimum": {{ .MinBufferSize }}},
				"handles-buffer-size":		{"type": "integer", "minimum": {{ .MinBufferSize }}},
				"probe-timeout":			{"type": "string", "minLength": 2, "pattern": "^[0-9]+(us|ms|s)$"},
				"probe-type-index":			{"type": "integer", "minimum": 2, "maximum": {{ .MaxTypeIndex }}},
				"dup-access":				{"type": "integer", "minimum": 0},
				"watch-interval":			{"type": "string", "minLength": 2, "pattern": "^[0-9]+(ms|s|m)$"}
			},
			"additionalProperties": false
		},
		"logging": {
			"type": "object",
			"properties": {
				"level":			{"type": "string", "enum": ["panic", "fatal", "error", "warn", "info", "debug", "trace"]},
				"max-age":			{"type": "integer", "minimum": 0},
				"max-backups":		{"type": "integer", "minimum": 1},
				"max-size":			{"type": "integer", "minimum": 1},
				"formatter":		{"type": "string", "enum": ["json", "text"]},
				"path":				{"type": "string"},
				"filename":			{"type": "string", "minLength": 1},
				"log-stdout":		{"type": "boolean"}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}
`

type schemaConfig struct {
	MinBufferSize uint32
	MaxTypeIndex  uint32
}

func interpolateSchema() string {
	tmpl := template.Must(template.New("schema").Parse(schema))

	var b bytes.Buffer
	err := tmpl.Execute(&b, &schemaConfig{
		MinBufferSize: minBufferSize,
		MaxTypeIndex:  maxTypeIndex,
	})
	if err != nil {
		return ""
	}

	return b.String()
}
