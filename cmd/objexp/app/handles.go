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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/handle/types"
	"github.com/spf13/cobra"
)

var handlesCmd = &cobra.Command{
	Use:         "handles",
	Short:       "List handles opened in the system",
	Annotations: live,
	RunE:        listHandles,
}

var (
	handlesConfig = config.NewWithOpts()

	pid        uint32
	handleType string
	shortTypes bool
)

func init() {
	handlesConfig.MustViperize(handlesCmd)
	handlesCmd.Flags().Uint32Var(&pid, "pid", 0, "Shows only the handles owned by the process with the given identifier")
	handlesCmd.Flags().StringVar(&handleType, "type", "", "Shows only the handles referencing the objects of the given type name or its short alias")
	handlesCmd.Flags().BoolVar(&shortTypes, "short-types", false, "Renders the short type aliases in the type column")
}

func listHandles(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewApp(handlesConfig, bootstrap.WithDebugPrivilege())
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx, cancel := signalContext()
	defer cancel()

	mgr := app.Manager()
	if err := mgr.EnumHandlesAndObjects(ctx); err != nil {
		return err
	}

	t := newTable(table.Row{"Process", "Handle", "Type", "Object", "Name", "Access"})
	var n int
	for _, h := range filterHandles(mgr.Handles(), pid) {
		typ, err := mgr.GetType(h.TypeIndex)
		if err != nil {
			return err
		}
		if handleType != "" && !handle.MatchType(typ.Name, handleType) {
			continue
		}
		typeName := typ.Name
		if shortTypes {
			typeName = handle.GetShortName(typ.Name)
		}
		var name string
		if obj, ok := mgr.ObjectByAddress(h.Object); ok {
			name = obj.Name
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%s (%d)", mgr.ProcessName(h.PID), h.PID),
			fmt.Sprintf("%#x", h.Value),
			typeName,
			fmt.Sprintf("%#x", h.Object),
			name,
			typ.Handler.FormatAccess(h.Access),
		})
		n++
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d handles", n)})
	t.Render()
	return nil
}

func filterHandles(handles types.Handles, pid uint32) types.Handles {
	if pid == 0 {
		return handles
	}
	filtered := make(types.Handles, 0)
	for _, h := range handles {
		if h.PID == pid {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
