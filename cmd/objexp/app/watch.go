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
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/util/spinner"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:         "watch",
	Short:       "Watch object type counters and print the changes between refreshes",
	Annotations: live,
	RunE:        watch,
}

var watchConfig = config.NewWithOpts(config.WithWatch())

func init() {
	watchConfig.MustViperize(watchCmd)
}

func watch(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewApp(watchConfig)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	mgr := app.Manager()
	n, err := mgr.EnumTypes()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "watching %d object types (%s objects, %s handles)\n",
		n, humanize.Comma(int64(mgr.TotalObjects())), humanize.Comma(int64(mgr.TotalHandles())))

	ctx, cancel := signalContext()
	defer cancel()

	tick := time.NewTicker(watchConfig.Enum.WatchInterval)
	defer tick.Stop()

	s := spinner.Show(os.Stderr, "watching")
	defer func() { s.Stop() }()
	started := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if _, err := mgr.EnumTypes(); err != nil {
				return err
			}
			changes := mgr.Changes()
			if len(changes) > 0 {
				s.Stop()
				printChanges(changes)
				s = spinner.Show(os.Stderr, "watching")
			}
			s.Update(fmt.Sprintf("generation %d, started %s", mgr.Generation(), humanize.Time(started)))
		}
	}
}

func printChanges(changes []objmgr.Change) {
	now := time.Now().Format("15:04:05")
	for _, c := range changes {
		sign := "+"
		if c.Delta < 0 {
			sign = "-"
		}
		delta := c.Delta
		if delta < 0 {
			delta = -delta
		}
		fmt.Fprintf(os.Stdout, "%s %-24s %-14s %s%s\n", now, fmt.Sprintf("%s(%d)", c.TypeName, c.TypeIndex), c.Kind, sign, humanize.Comma(delta))
	}
}
