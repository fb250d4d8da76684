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
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	kerrors "github.com/rabbitstack/objexp/pkg/errors"
	"github.com/rabbitstack/objexp/pkg/util/rest"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show runtime config",
	RunE:  printConfig,
}

var (
	cfg   = config.NewWithOpts(config.WithStats())
	local bool
)

func init() {
	cfg.MustViperize(configCmd)
	configCmd.Flags().BoolVar(&local, "local", false, "Prints the effective local configuration instead of querying the running server")
}

func printConfig(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(cfg); err != nil {
		return err
	}
	if local {
		_, err := fmt.Fprintln(os.Stdout, cfg.Print())
		return err
	}
	body, err := rest.Get(rest.WithTransport(cfg.API.Transport), rest.WithURI("config"), rest.WithTimeout(cfg.API.Timeout))
	if err != nil {
		return kerrors.ErrHTTPServerUnavailable(cfg.API.Transport, err)
	}
	var opts map[string]string
	if err := json.Unmarshal(body, &opts); err != nil {
		return err
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable(table.Row{"Option", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, opts[k]})
	}
	t.Render()
	return nil
}
