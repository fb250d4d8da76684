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

package app

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	kerrors "github.com/rabbitstack/objexp/pkg/errors"
	"github.com/rabbitstack/objexp/pkg/util/rest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime stats of the running server",
	RunE:  stats,
}

var (
	statsConfig = config.NewWithOpts(config.WithStats())
	wait        time.Duration
)

func init() {
	statsConfig.MustViperize(statsCmd)
	statsCmd.Flags().DurationVar(&wait, "wait", 0, "Waits up to the given duration for the API server to come up")
}

// Stats stores runtime statistics that are retrieved from the expvar endpoint.
type Stats struct {
	APIRefreshThrottled   int            `json:"api.refresh.throttled"`
	HandleDupFailures     map[string]int `json:"handle.dup.failures"`
	HandleProbeTimeouts   int            `json:"handle.probe.timeouts"`
	InvariantBreaches     int            `json:"invariant.breaches"`
	LoggerErrors          map[string]int `json:"logger.errors"`
	ObjmgrCycles          map[string]int `json:"objmgr.cycles"`
	ObjmgrNameUnresolved  int            `json:"objmgr.name.unresolved"`
	ObjmgrObjects         int            `json:"objmgr.objects"`
	ObjmgrRegistryChanges int            `json:"objmgr.registry.changes"`
	PsCount               int            `json:"ps.count"`
	PsRefreshFailures     int            `json:"ps.refresh.failures"`
	RecordBufferGrows     int            `json:"record.buffer.grows"`
}

func stats(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(statsConfig); err != nil {
		return err
	}

	c := statsConfig.API
	body, err := rest.Get(rest.WithTransport(c.Transport), rest.WithURI("debug/vars"), rest.WithTimeout(c.Timeout), rest.WithRetry(wait))
	if err != nil {
		return kerrors.ErrHTTPServerUnavailable(c.Transport, err)
	}
	var stats Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return err
	}

	t := newTable(table.Row{"Name", "Value"})

	typ := reflect.TypeOf(stats)
	val := reflect.ValueOf(stats)

	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("json")
		if tag == "" {
			continue
		}
		t.AppendRow(table.Row{tag, val.Field(i).Interface()})
	}

	t.Render()

	return nil
}
