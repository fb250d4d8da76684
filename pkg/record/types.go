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

// TypeInfoSize is the size of the fixed portion of the object type record.
const TypeInfoSize = 104

// GenericMapping maps the generic access rights to the type specific rights.
type GenericMapping struct {
	Read    uint32 `json:"read"`
	Write   uint32 `json:"write"`
	Execute uint32 `json:"execute"`
	All     uint32 `json:"all"`
}

// TypeRecord is the object type metadata along with the live counters
// as reported by the object types query.
type TypeRecord struct {
	Name                       string
	Index                      uint16
	TotalObjects               uint32
	TotalHandles               uint32
	TotalPagedPoolUsage        uint32
	TotalNonPagedPoolUsage     uint32
	TotalNamePoolUsage         uint32
	TotalHandleTableUsage      uint32
	HighWaterObjects           uint32
	HighWaterHandles           uint32
	HighWaterPagedPoolUsage    uint32
	HighWaterNonPagedPoolUsage uint32
	HighWaterNamePoolUsage     uint32
	HighWaterHandleTableUsage  uint32
	InvalidAttributes          uint32
	GenericMapping             GenericMapping
	ValidAccessMask            uint32
	SecurityRequired           bool
	MaintainHandleCount        bool
	PoolType                   uint32
	DefaultPagedPoolCharge     uint32
	DefaultNonPagedPoolCharge  uint32
}

func (b *Buffer) genericMapping(off int) GenericMapping {
	return GenericMapping{
		Read:    b.u32(off),
		Write:   b.u32(off + 4),
		Execute: b.u32(off + 8),
		All:     b.u32(off + 12),
	}
}

// DecodeObjectTypes decodes the object types information block. The block starts with
// the number of types, and the records are packed one after another. Each record is
// followed by the type name, and the next record starts at the pointer-aligned address
// past the name's maximum length.
func DecodeObjectTypes(b *Buffer) ([]TypeRecord, error) {
	if err := invariant.Check(b.in(0, 4), "object types buffer of %d bytes has no header", b.Len()); err != nil {
		return nil, err
	}
	count := int(b.u32(0))
	off := b.alignUp(4)
	// every record takes at least the fixed part of the type information
	if err := invariant.Check(count <= (b.Len()-off)/TypeInfoSize, "%d object types overrun the %d bytes buffer", count, b.Len()); err != nil {
		return nil, err
	}
	types := make([]TypeRecord, 0, count)

	for i := 0; i < count; i++ {
		if err := b.checkRecord(off, TypeInfoSize, "object type"); err != nil {
			return types, err
		}
		name, err := b.unicodeString(off)
		if err != nil {
			return types, err
		}
		types = append(types, TypeRecord{
			Name:                       name,
			TotalObjects:               b.u32(off + 16),
			TotalHandles:               b.u32(off + 20),
			TotalPagedPoolUsage:        b.u32(off + 24),
			TotalNonPagedPoolUsage:     b.u32(off + 28),
			TotalNamePoolUsage:         b.u32(off + 32),
			TotalHandleTableUsage:      b.u32(off + 36),
			HighWaterObjects:           b.u32(off + 40),
			HighWaterHandles:           b.u32(off + 44),
			HighWaterPagedPoolUsage:    b.u32(off + 48),
			HighWaterNonPagedPoolUsage: b.u32(off + 52),
			HighWaterNamePoolUsage:     b.u32(off + 56),
			HighWaterHandleTableUsage:  b.u32(off + 60),
			InvalidAttributes:          b.u32(off + 64),
			GenericMapping:             b.genericMapping(off + 68),
			ValidAccessMask:            b.u32(off + 84),
			SecurityRequired:           b.u8(off+88) != 0,
			MaintainHandleCount:        b.u8(off+89) != 0,
			Index:                      uint16(b.u8(off + 90)),
			PoolType:                   b.u32(off + 92),
			DefaultPagedPoolCharge:     b.u32(off + 96),
			DefaultNonPagedPoolCharge:  b.u32(off + 100),
		})
		off = b.alignUp(off + TypeInfoSize + int(b.u16(off+2)))
	}

	return types, nil
}
