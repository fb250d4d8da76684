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
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/ps"
	"github.com/spf13/cobra"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "List objects referenced by the system handle table along with their names",
	Long: `
	Lists the objects discovered by walking the system handle table. Each object
	appears once, along with the processes owning handles to it. With the --system
	flag, the objects are enumerated directly from the object manager instead, which
	requires the global flag for maintaining the object type lists to be enabled.
	`,
	Annotations: live,
	RunE:        listObjects,
}

var (
	objectsConfig = config.NewWithOpts()

	objectType string
	find       string
	tmpl       string
	unresolved bool
	systemWide bool
)

const maxOwners = 3

func init() {
	objectsConfig.MustViperize(objectsCmd)
	objectsCmd.Flags().StringVar(&objectType, "type", "", "Shows only the objects of the given type name")
	objectsCmd.Flags().StringVar(&find, "find", "", "Shows only the objects whose name fuzzy matches the given term")
	objectsCmd.Flags().StringVar(&tmpl, "template", "", "Renders each object with the Go template instead of the table. Sprig functions are available")
	objectsCmd.Flags().BoolVar(&unresolved, "unresolved", false, "Shows only the objects whose name couldn't be resolved")
	objectsCmd.Flags().BoolVar(&systemWide, "system", false, "Enumerates the objects from the object manager type lists")
}

// objectView is the object representation handed to the table and the template.
type objectView struct {
	Address    uint64
	Type       string
	Name       string
	Handles    uint32
	Pointers   int32
	Owners     []string
	Creator    string
	DupFailure string
}

func listObjects(cmd *cobra.Command, args []string) error {
	var t *template.Template
	if tmpl != "" {
		var err error
		t, err = template.New("object").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
		if err != nil {
			return fmt.Errorf("invalid object template: %v", err)
		}
	}

	app, err := bootstrap.NewApp(objectsConfig, bootstrap.WithDebugPrivilege())
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx, cancel := signalContext()
	defer cancel()

	var views []objectView
	if systemWide {
		views, err = systemObjects(app.Manager())
	} else {
		views, err = handleObjects(ctx, app.Manager())
	}
	if err != nil {
		return err
	}
	views = filterObjects(views, objectType, find, unresolved)

	if t != nil {
		for _, v := range views {
			if err := t.Execute(os.Stdout, v); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout)
		}
		return nil
	}
	renderObjects(views)
	return nil
}

func handleObjects(ctx context.Context, mgr *objmgr.Manager) ([]objectView, error) {
	if err := mgr.EnumHandlesAndObjects(ctx); err != nil {
		return nil, err
	}
	objects := mgr.Objects()
	views := make([]objectView, 0, len(objects))
	for _, o := range objects {
		v := objectView{
			Address: o.Address,
			Type:    mgr.TypeName(o.TypeIndex),
			Name:    o.Name,
			Handles: o.HandleCount,
		}
		if o.DupFailure != handle.DupOK {
			v.DupFailure = o.DupFailure.String()
		}
		for _, pid := range o.Handles.PIDs() {
			v.Owners = append(v.Owners, ps.ProcessInfo{PID: pid, Name: mgr.ProcessName(pid)}.String())
		}
		views = append(views, v)
	}
	return views, nil
}

func systemObjects(mgr *objmgr.Manager) ([]objectView, error) {
	if err := mgr.EnumObjects(); err != nil {
		return nil, err
	}
	views := make([]objectView, 0)
	for _, typ := range mgr.AllTypeObjects() {
		for _, o := range typ.Objects {
			v := objectView{
				Address:  o.Address,
				Type:     typ.Name,
				Name:     o.Name,
				Pointers: o.PointerCount,
			}
			if o.HandleCount > 0 {
				v.Handles = uint32(o.HandleCount)
			}
			if o.CreatorPID != 0 {
				v.Creator = ps.ProcessInfo{PID: o.CreatorPID, Name: o.CreatorName}.String()
			}
			views = append(views, v)
		}
	}
	return views, nil
}

func filterObjects(views []objectView, typ, term string, unresolved bool) []objectView {
	filtered := views[:0]
	for _, v := range views {
		if typ != "" && !handle.MatchType(v.Type, typ) {
			continue
		}
		if unresolved && v.Name != "" {
			continue
		}
		if term != "" && !fuzzy.MatchFold(term, v.Name) {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

func renderObjects(views []objectView) {
	t := newTable(table.Row{"Address", "Type", "Name", "Handles", "Pointers", "Owners", "Creator"})
	t.SetColumnConfigs(alignRight(4, 5))
	for _, v := range views {
		name := v.Name
		if name == "" && v.DupFailure != "" {
			name = "<" + v.DupFailure + ">"
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%#x", v.Address),
			v.Type,
			name,
			v.Handles,
			v.Pointers,
			formatOwners(v.Owners),
			v.Creator,
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d objects", len(views))})
	t.Render()
}

func formatOwners(owners []string) string {
	if len(owners) <= maxOwners {
		return strings.Join(owners, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(owners[:maxOwners], ", "), len(owners)-maxOwners)
}
