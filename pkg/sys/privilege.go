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

package sys

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// SeDebugPrivilege is the name of the privilege that grants opening any process
// for handle duplication regardless of its security descriptor.
const SeDebugPrivilege = "SeDebugPrivilege"

// EnableTokenPrivilege enables the named privilege in the given token. The token
// must have TOKEN_ADJUST_PRIVILEGES access.
func EnableTokenPrivilege(token windows.Token, name string) error {
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, windows.StringToUTF16Ptr(name), &luid); err != nil {
		return errors.Wrapf(err, "LookupPrivilegeValue failed on %q", name)
	}
	privs := windows.Tokenprivileges{PrivilegeCount: 1}
	privs.Privileges[0] = windows.LUIDAndAttributes{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED}
	err := windows.AdjustTokenPrivileges(token, false, &privs, uint32(unsafe.Sizeof(privs)), nil, nil)
	if err != nil {
		return errors.Wrapf(err, "unable to enable %s", name)
	}
	// AdjustTokenPrivileges succeeds even when the privilege isn't held by the token
	if errno := windows.GetLastError(); errno == windows.ERROR_NOT_ALL_ASSIGNED {
		return errors.Errorf("%s is not held by the process token", name)
	}
	return nil
}

// SetDebugPrivilege enables the debug privilege in the current running process.
func SetDebugPrivilege() error {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token)
	if err != nil {
		return errors.Wrap(err, "unable to open process token")
	}
	defer token.Close()
	return EnableTokenPrivilege(token, SeDebugPrivilege)
}
