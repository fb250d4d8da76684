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

package objmgr

import (
	"fmt"

	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/handle/types"
	"github.com/rabbitstack/objexp/pkg/objtype"
	"github.com/rabbitstack/objexp/pkg/record"
)

// TypeInfoEx is the persistent object type entry. Its identity is the type index and
// the live counters are updated in place on every registry refresh.
type TypeInfoEx struct {
	record.TypeRecord
	// Handler describes the type specific capabilities. It is nil for types without the specialized handler.
	Handler *objtype.Handler `json:"-"`
}

// Kind returns the handler kind of the type.
func (t *TypeInfoEx) Kind() objtype.Kind { return t.Handler.KindOrNone() }

// ChangeKind identifies the type counter that changed between two registry refreshes.
type ChangeKind uint8

const (
	// TotalHandlesDelta is the change in the number of handles.
	TotalHandlesDelta ChangeKind = iota
	// TotalObjectsDelta is the change in the number of objects.
	TotalObjectsDelta
	// PeakHandlesDelta is the change in the handles high-water mark.
	PeakHandlesDelta
	// PeakObjectsDelta is the change in the objects high-water mark.
	PeakObjectsDelta
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case TotalHandlesDelta:
		return "TotalHandles"
	case TotalObjectsDelta:
		return "TotalObjects"
	case PeakHandlesDelta:
		return "PeakHandles"
	case PeakObjectsDelta:
		return "PeakObjects"
	default:
		return fmt.Sprintf("ChangeKind(%d)", uint8(k))
	}
}

// MarshalText renders the change kind as text.
func (k ChangeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Change is the counter delta of the type observed on the registry refresh.
type Change struct {
	TypeIndex uint16     `json:"type_index"`
	TypeName  string     `json:"type_name"`
	Kind      ChangeKind `json:"kind"`
	Delta     int64      `json:"delta"`
}

// String returns the change description.
func (c Change) String() string {
	return fmt.Sprintf("%s(%d) %s %+d", c.TypeName, c.TypeIndex, c.Kind, c.Delta)
}

// TypeInfo is the object type along with its live instances as observed by the
// full object enumeration. It is rebuilt on every enumeration.
type TypeInfo struct {
	Index             uint16                `json:"index"`
	Name              string                `json:"name"`
	GenericMapping    record.GenericMapping `json:"generic_mapping"`
	InvalidAttributes uint32                `json:"invalid_attributes"`
	ValidAccessMask   uint32                `json:"valid_access_mask"`
	PoolType          uint32                `json:"pool_type"`
	SecurityRequired  bool                  `json:"security_required"`
	Waitable          bool                  `json:"waitable"`
	NumberOfObjects   uint32                `json:"number_of_objects"`
	NumberOfHandles   uint32                `json:"number_of_handles"`
	Objects           []*ObjectInfo         `json:"-"`
}

// ObjectInfo is the live object instance discovered by the full object enumeration.
// The owning type is referenced by its index.
type ObjectInfo struct {
	Address            uint64 `json:"address"`
	TypeIndex          uint16 `json:"type_index"`
	Name               string `json:"name"`
	HandleCount        int32  `json:"handle_count"`
	PointerCount       int32  `json:"pointer_count"`
	PagedPoolCharge    uint32 `json:"paged_pool_charge"`
	NonPagedPoolCharge uint32 `json:"non_paged_pool_charge"`
	Flags              uint16 `json:"flags"`
	ExclusivePID       uint32 `json:"exclusive_pid"`
	CreatorPID         uint32 `json:"creator_pid"`
	CreatorName        string `json:"creator_name"`
}

// ObjectInfoEx is the object derived from the system handle table. Objects are
// deduplicated by their kernel address and own all the handles referencing them.
type ObjectInfoEx struct {
	Address     uint64        `json:"address"`
	TypeIndex   uint16        `json:"type_index"`
	HandleCount uint32        `json:"handle_count"`
	Handles     types.Handles `json:"handles"`
	Name        string        `json:"name"`
	// DupFailure is the reason none of the handles could be duplicated for the name query.
	DupFailure handle.DupFailure `json:"-"`

	// local is the duplicated handle used for the name query, released when the object is discarded
	local uintptr
}

// Unresolved determines if the object name couldn't be resolved.
func (o *ObjectInfoEx) Unresolved() bool { return o.Name == "" }
