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

package handle

import (
	"errors"
	"fmt"

	"github.com/rabbitstack/objexp/pkg/sys"
	"golang.org/x/sys/windows"
)

type duplicator struct{}

// NewDuplicator returns the duplicator that opens the owning process with the
// PROCESS_DUP_HANDLE right and duplicates the handle into the current process.
func NewDuplicator() Duplicator { return duplicator{} }

func (duplicator) Duplicate(value uint64, pid uint32, access uint32) (uintptr, error) {
	if sys.IsCurrentProcess(pid) {
		var dup windows.Handle
		err := windows.DuplicateHandle(windows.CurrentProcess(), windows.Handle(value), windows.CurrentProcess(), &dup, access, false, 0)
		if err != nil {
			return 0, classify(err)
		}
		return uintptr(dup), nil
	}
	dup, err := sys.DuplicateHandle(windows.Handle(value), pid, access)
	if err != nil {
		return 0, classify(err)
	}
	return uintptr(dup), nil
}

func (duplicator) Close(h uintptr) error {
	if h == 0 {
		return nil
	}
	return windows.CloseHandle(windows.Handle(h))
}

func classify(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		// OpenProcess fails with invalid parameter when the process doesn't exist
		return fmt.Errorf("%w: %v", ErrProcessGone, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	case errors.Is(err, windows.ERROR_NOT_SUPPORTED):
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return err
}
