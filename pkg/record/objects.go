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

package record

import (
	"github.com/rabbitstack/objexp/pkg/util/invariant"
)

const (
	// ObjectTypeInfoSize is the size of the fixed portion of the type record in the system objects block.
	ObjectTypeInfoSize = 64
	// ObjectInfoSize is the size of the fixed portion of the object instance record.
	ObjectInfoSize = 80
)

// ObjectTypeRecord describes an object type and all its live instances.
type ObjectTypeRecord struct {
	Name              string
	Index             uint16
	NumberOfObjects   uint32
	NumberOfHandles   uint32
	InvalidAttributes uint32
	GenericMapping    GenericMapping
	ValidAccessMask   uint32
	PoolType          uint32
	SecurityRequired  bool
	Waitable          bool
	Objects           []ObjectRecord
}

// ObjectRecord describes a live object instance.
type ObjectRecord struct {
	Object                uint64
	CreatorPID            uint32
	CreatorBackTraceIndex uint16
	Flags                 uint16
	PointerCount          int32
	HandleCount           int32
	PagedPoolCharge       uint32
	NonPagedPoolCharge    uint32
	ExclusivePID          uint32
	Name                  string
}

// DecodeSystemObjects decodes the system objects information block. Type records are
// linked through the next entry offset which is relative to the buffer origin. The zero
// offset terminates the list. The instances of each type follow the type name and are
// linked in the same way.
func DecodeSystemObjects(b *Buffer) ([]ObjectTypeRecord, error) {
	types := make([]ObjectTypeRecord, 0, 64)
	off := 0

	for {
		if err := b.checkRecord(off, ObjectTypeInfoSize, "object type"); err != nil {
			return types, err
		}
		name, err := b.unicodeString(off + 48)
		if err != nil {
			return types, err
		}
		typ := ObjectTypeRecord{
			Name:              name,
			NumberOfObjects:   b.u32(off + 4),
			NumberOfHandles:   b.u32(off + 8),
			Index:             uint16(b.u32(off + 12)),
			InvalidAttributes: b.u32(off + 16),
			GenericMapping:    b.genericMapping(off + 20),
			ValidAccessMask:   b.u32(off + 36),
			PoolType:          b.u32(off + 40),
			SecurityRequired:  b.u8(off+44) != 0,
			Waitable:          b.u8(off+45) != 0,
		}
		// types without live instances aren't followed by instance records
		if typ.NumberOfObjects > 0 {
			typ.Objects, err = b.decodeObjects(off + ObjectTypeInfoSize + int(b.u16(off+50)))
			if err != nil {
				types = append(types, typ)
				return types, err
			}
		}
		types = append(types, typ)

		next := int(b.u32(off))
		if next == 0 {
			break
		}
		if next <= off {
			return types, invariant.Breach("object type record at offset %d links back to offset %d", off, next)
		}
		off = next
	}

	return types, nil
}

func (b *Buffer) decodeObjects(off int) ([]ObjectRecord, error) {
	objects := make([]ObjectRecord, 0, 64)
	for {
		if err := b.checkRecord(off, ObjectInfoSize, "object"); err != nil {
			return objects, err
		}
		name, err := b.unicodeString(off + 64)
		if err != nil {
			return objects, err
		}
		objects = append(objects, ObjectRecord{
			Object:                b.u64(off + 8),
			CreatorPID:            uint32(b.u64(off + 16)),
			CreatorBackTraceIndex: b.u16(off + 24),
			Flags:                 b.u16(off + 26),
			PointerCount:          int32(b.u32(off + 28)),
			HandleCount:           int32(b.u32(off + 32)),
			PagedPoolCharge:       b.u32(off + 36),
			NonPagedPoolCharge:    b.u32(off + 40),
			ExclusivePID:          uint32(b.u64(off + 48)),
			Name:                  name,
		})

		next := int(b.u32(off))
		if next == 0 {
			break
		}
		if next <= off {
			return objects, invariant.Breach("object record at offset %d links back to offset %d", off, next)
		}
		off = next
	}
	return objects, nil
}
