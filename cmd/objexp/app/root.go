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
	"errors"
	"runtime"

	"github.com/spf13/cobra"
)

// liveAnnotation marks the commands that query the object manager of the running kernel.
const liveAnnotation = "live"

// RootCmd is the entrance to the objexp CLI
var RootCmd = &cobra.Command{
	Use:   "objexp",
	Short: "Explorer of the Windows kernel object manager",
	Long: `
	objexp enumerates the object types registered in the Windows object manager,
	the live objects of each type and every handle opened in the system. Objects
	are correlated with their owning handles and resolved to their names. The
	snapshots can be watched for counter changes or served over the HTTP API.
	`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cmd.Annotations[liveAnnotation]; !ok {
			return nil
		}
		if runtime.GOOS != "windows" {
			return errors.New("objexp can only explore the object manager on Windows operating systems")
		}
		if runtime.GOARCH == "386" {
			return errors.New("objexp can't be run on 32-bits Windows operating systems")
		}
		return nil
	},
}

var live = map[string]string{liveAnnotation: "true"}

func init() {
	RootCmd.AddCommand(typesCmd)
	RootCmd.AddCommand(objectsCmd)
	RootCmd.AddCommand(handlesCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)
}
