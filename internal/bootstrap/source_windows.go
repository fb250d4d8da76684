//go:build windows

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

package bootstrap

import (
	"errors"

	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/sys"
	"golang.org/x/sys/windows"
)

func newSource() (objmgr.Source, error) { return objmgr.NewSystemSource(), nil }

func setDebugPrivilege() error { return sys.SetDebugPrivilege() }

// isSingleInstance checks if there is a single instance of the server
// running in the system. This is accomplished by creating a global event
// object. If such an object already exists, we can conclude the server
// is already running.
func isSingleInstance() bool {
	name, err := windows.UTF16PtrFromString("Global\\objexp")
	if err != nil {
		return false
	}
	event, err := windows.CreateEvent(nil, 0, 0, name)
	return event != 0 && !errors.Is(err, windows.ERROR_ALREADY_EXISTS)
}
