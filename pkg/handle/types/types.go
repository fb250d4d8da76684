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

package types

import (
	"fmt"
	"strings"

	"github.com/rabbitstack/objexp/pkg/record"
)

// Handles represents a collection of handles.
type Handles []HandleInfo

// HandleInfo is the system handle table row.
type HandleInfo struct {
	// Value is the handle value in the address space of the owning process.
	Value uint64 `json:"value"`
	// Access is the granted access mask.
	Access uint32 `json:"access"`
	// Object is the kernel address that this handle references.
	Object uint64 `json:"object"`
	// Attributes are the handle attributes (e.g. inherit, protect from close)
	Attributes uint32 `json:"attributes"`
	// PID represents the identifier of the process that owns the handle.
	PID uint32 `json:"pid"`
	// TypeIndex is the index of the referenced object's type.
	TypeIndex uint16 `json:"type_index"`
}

// FromRecord builds the handle row from the decoded handle table entry.
func FromRecord(r record.HandleRecord) HandleInfo {
	return HandleInfo{
		Value:      r.Value,
		Access:     r.Access,
		Object:     r.Object,
		Attributes: r.Attributes,
		PID:        r.PID,
		TypeIndex:  r.TypeIndex,
	}
}

// String returns a string representation of the handle.
func (h HandleInfo) String() string {
	return fmt.Sprintf("Value: %#x, Access: %#x, Object: %#x, PID: %d, Type: %d", h.Value, h.Access, h.Object, h.PID, h.TypeIndex)
}

// String returns the string representation of all handles.
func (handles Handles) String() string {
	var sb strings.Builder
	for _, h := range handles {
		sb.WriteString(h.String() + " | ")
	}
	return strings.TrimSuffix(sb.String(), " | ")
}

// PIDs returns the distinct identifiers of the processes owning the handles.
func (handles Handles) PIDs() []uint32 {
	pids := make([]uint32, 0, len(handles))
	seen := make(map[uint32]bool, len(handles))
	for _, h := range handles {
		if seen[h.PID] {
			continue
		}
		seen[h.PID] = true
		pids = append(pids, h.PID)
	}
	return pids
}
