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
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:         "types",
	Short:       "List object types registered in the object manager",
	Annotations: live,
	RunE:        listTypes,
}

var (
	typesConfig = config.NewWithOpts()
	sortBy      string
)

func init() {
	typesConfig.MustViperize(typesCmd)
	typesCmd.Flags().StringVar(&sortBy, "sort", "index", "Sorts the types by index, name, objects or handles")
}

func listTypes(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewApp(typesConfig)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	mgr := app.Manager()
	if _, err := mgr.EnumTypes(); err != nil {
		return err
	}
	typs := mgr.Types()
	if err := sortTypes(typs, sortBy); err != nil {
		return err
	}

	t := newTable(table.Row{"Index", "Name", "Objects", "Handles", "Peak Objects", "Peak Handles", "Paged Pool", "Non-Paged Pool", "Valid Access"})
	t.SetColumnConfigs(alignRight(1, 3, 4, 5, 6, 7, 8))
	for _, typ := range typs {
		t.AppendRow(table.Row{
			typ.Index,
			typ.Name,
			humanize.Comma(int64(typ.TotalObjects)),
			humanize.Comma(int64(typ.TotalHandles)),
			humanize.Comma(int64(typ.HighWaterObjects)),
			humanize.Comma(int64(typ.HighWaterHandles)),
			humanize.Bytes(uint64(typ.TotalPagedPoolUsage)),
			humanize.Bytes(uint64(typ.TotalNonPagedPoolUsage)),
			typ.Handler.FormatAccess(typ.ValidAccessMask),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d types", len(typs)), humanize.Comma(int64(mgr.TotalObjects())), humanize.Comma(int64(mgr.TotalHandles()))})
	t.Render()

	return nil
}

func sortTypes(typs []objmgr.TypeInfoEx, by string) error {
	var less func(i, j int) bool
	switch by {
	case "index":
		less = func(i, j int) bool { return typs[i].Index < typs[j].Index }
	case "name":
		less = func(i, j int) bool { return typs[i].Name < typs[j].Name }
	case "objects":
		less = func(i, j int) bool { return typs[i].TotalObjects > typs[j].TotalObjects }
	case "handles":
		less = func(i, j int) bool { return typs[i].TotalHandles > typs[j].TotalHandles }
	default:
		return fmt.Errorf("unknown sort key %q", by)
	}
	sort.SliceStable(typs, less)
	return nil
}
