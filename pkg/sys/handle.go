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
	"fmt"
	"golang.org/x/sys/windows"
	"os"
)

// DuplicateHandle duplicates the handle owned by the specified process into the caller
// process's address space with the requested access rights.
func DuplicateHandle(handle windows.Handle, pid uint32, access uint32) (windows.Handle, error) {
	// handle to the process with the handle to be duplicated
	source, err := windows.OpenProcess(windows.PROCESS_DUP_HANDLE, false, pid)
	if err != nil {
		return windows.InvalidHandle, err
	}
	//nolint:errcheck
	defer windows.CloseHandle(source)
	// duplicate the remote handle in the current process's address space.
	// Note that for certain handle types this operation might fail
	// as they don't permit duplicate operations
	var dup windows.Handle
	err = windows.DuplicateHandle(source, handle, windows.CurrentProcess(), &dup, access, false, 0)
	if err != nil {
		return windows.InvalidHandle, fmt.Errorf("unable to duplicate handle %#x of pid %d: %w", handle, pid, err)
	}
	return dup, nil
}

// IsCurrentProcess determines if the pid belongs to this process.
func IsCurrentProcess(pid uint32) bool { return pid == uint32(os.Getpid()) }
