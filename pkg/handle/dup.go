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

// Package handle duplicates handles owned by other processes into the local process
// and runs the object queries that may block under a bounded timeout.
package handle

import (
	"errors"
	"expvar"
	"fmt"

	"github.com/rabbitstack/objexp/pkg/handle/types"
)

// QueryAccess is the default access requested for duplicated handles. It suffices
// for querying the object name and the security descriptor.
const QueryAccess uint32 = 0x00020000 // READ_CONTROL

var (
	// ErrProcessGone signals the process owning the handle has exited.
	ErrProcessGone = errors.New("owning process is gone")
	// ErrAccessDenied signals the owning process or the handle can't be opened with the requested rights.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnsupported signals the object type doesn't permit duplication.
	ErrUnsupported = errors.New("duplication not supported")

	dupFailures = expvar.NewMap("handle.dup.failures")
)

// Duplicator duplicates remote handles into the local process.
type Duplicator interface {
	// Duplicate duplicates the handle value owned by the process with the given
	// identifier and returns the local handle.
	Duplicate(value uint64, pid uint32, access uint32) (uintptr, error)
	// Close releases the local handle.
	Close(h uintptr) error
}

// DupFailure describes why none of the object's handles could be duplicated.
type DupFailure uint8

const (
	// DupOK indicates the duplication succeeded or wasn't attempted.
	DupOK DupFailure = iota
	// NoHandles indicates the object had no owning handles.
	NoHandles
	// ProcessGone indicates all owning processes have exited.
	ProcessGone
	// AccessDenied indicates at least one owning process refused the duplication.
	AccessDenied
	// Unsupported indicates the duplication failed for any other reason.
	Unsupported
)

// String returns the failure reason.
func (f DupFailure) String() string {
	switch f {
	case DupOK:
		return ""
	case NoHandles:
		return "no handles"
	case ProcessGone:
		return "process gone"
	case AccessDenied:
		return "access denied"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("DupFailure(%d)", uint8(f))
	}
}

// Dup tries to duplicate each of the handles in turn with the requested access. The first
// successful duplicate is returned. If all attempts fail, the failure reason and the
// joined errors of all attempts are returned.
func Dup(d Duplicator, handles []types.HandleInfo, access uint32) (uintptr, DupFailure, error) {
	if len(handles) == 0 {
		dupFailures.Add(NoHandles.String(), 1)
		return 0, NoHandles, errors.New("object has no owning handles")
	}

	errs := make([]error, 0, len(handles))
	gone := 0
	denied := false
	for _, h := range handles {
		dup, err := d.Duplicate(h.Value, h.PID, access)
		if err == nil {
			return dup, DupOK, nil
		}
		switch {
		case errors.Is(err, ErrProcessGone):
			gone++
		case errors.Is(err, ErrAccessDenied):
			denied = true
		}
		errs = append(errs, err)
	}

	reason := Unsupported
	switch {
	case denied:
		reason = AccessDenied
	case gone == len(handles):
		reason = ProcessGone
	}
	dupFailures.Add(reason.String(), 1)

	return 0, reason, errors.Join(errs...)
}
