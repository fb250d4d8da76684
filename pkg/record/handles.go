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
	// HandleTableHeaderSize is the size of the handle count and the reserved field preceding the entries.
	HandleTableHeaderSize = 16
	// HandleEntrySize is the size of each handle table entry.
	HandleEntrySize = 40
)

// HandleRecord is the system handle table entry.
type HandleRecord struct {
	Object     uint64
	PID        uint32
	Value      uint64
	Access     uint32
	TypeIndex  uint16
	Attributes uint32
}

// DecodeHandles decodes the extended system handle table. Entries are laid out
// contiguously after the header.
func DecodeHandles(b *Buffer) ([]HandleRecord, error) {
	if err := invariant.Check(b.in(0, HandleTableHeaderSize), "handle table buffer of %d bytes has no header", b.Len()); err != nil {
		return nil, err
	}
	count := b.u64(0)
	if err := invariant.Check(count <= uint64(b.Len()-HandleTableHeaderSize)/HandleEntrySize, "%d handle entries overrun the %d bytes buffer", count, b.Len()); err != nil {
		return nil, err
	}
	if err := b.checkRecord(HandleTableHeaderSize, 0, "handle"); err != nil {
		return nil, err
	}

	handles := make([]HandleRecord, count)
	for i := range handles {
		off := HandleTableHeaderSize + i*HandleEntrySize
		handles[i] = HandleRecord{
			Object:     b.u64(off),
			PID:        uint32(b.u64(off + 8)),
			Value:      b.u64(off + 16),
			Access:     b.u32(off + 24),
			TypeIndex:  b.u16(off + 30),
			Attributes: b.u32(off + 32),
		}
	}
	return handles, nil
}
