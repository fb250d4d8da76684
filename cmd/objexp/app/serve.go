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

	"github.com/rabbitstack/objexp/internal/bootstrap"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Enumerate the object manager and expose the snapshots through the HTTP API",
	Annotations: live,
	RunE:        serve,
}

var serveConfig = config.NewWithOpts(config.WithServe())

func init() {
	serveConfig.MustViperize(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewApp(serveConfig, bootstrap.WithDebugPrivilege())
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	if err := app.Serve(ctx); err != nil {
		return errors.Join(err, app.Shutdown())
	}
	app.Wait(ctx)
	return app.Shutdown()
}
