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

// Package record decodes the self-describing buffers filled by the system introspection
// calls. The buffers carry fixed-size headers followed by variable-length trailers, and
// embed absolute pointers to the trailing strings. All layouts are the 64-bit ones.
package record

import (
	"encoding/binary"
	"unsafe"

	"github.com/rabbitstack/objexp/pkg/util/invariant"
	"github.com/rabbitstack/objexp/pkg/util/utf16"
)

// PtrSize is the pointer size of the decoded layouts.
const PtrSize = 8

// unicodeStringSize is the size of the (length, maximum length, buffer) triple.
const unicodeStringSize = 16

// Buffer is the memory block filled by the boundary query. Base is the address
// the operating system saw when it filled the block, and it's used to turn the
// embedded pointers into offsets.
type Buffer struct {
	Data []byte
	Base uintptr
}

// NewBuffer wraps the byte slice whose address is used as the buffer base.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{Data: b, Base: uintptr(unsafe.Pointer(unsafe.SliceData(b)))}
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int { return len(b.Data) }

func (b *Buffer) in(off, n int) bool {
	return off >= 0 && n >= 0 && off <= len(b.Data) && n <= len(b.Data)-off
}

func (b *Buffer) u8(off int) uint8   { return b.Data[off] }
func (b *Buffer) u16(off int) uint16 { return binary.LittleEndian.Uint16(b.Data[off:]) }
func (b *Buffer) u32(off int) uint32 { return binary.LittleEndian.Uint32(b.Data[off:]) }
func (b *Buffer) u64(off int) uint64 { return binary.LittleEndian.Uint64(b.Data[off:]) }

func (b *Buffer) aligned(off int) bool {
	return (b.Base+uintptr(off))%PtrSize == 0
}

// alignUp rounds the address at the given offset up to the pointer size
// and returns it as an offset.
func (b *Buffer) alignUp(off int) int {
	addr := b.Base + uintptr(off)
	addr = (addr + PtrSize - 1) &^ (PtrSize - 1)
	return int(addr - b.Base)
}

func (b *Buffer) checkRecord(off, size int, kind string) error {
	if !b.aligned(off) {
		return invariant.Breach("misaligned %s record at %#x", kind, b.Base+uintptr(off))
	}
	if !b.in(off, size) {
		return invariant.Breach("%s record at offset %d overruns the %d bytes buffer", kind, off, len(b.Data))
	}
	return nil
}

// unicodeString decodes the counted string whose descriptor is located at the given
// offset. The length is expressed in bytes and the pointer must land inside the buffer.
func (b *Buffer) unicodeString(off int) (string, error) {
	length := int(b.u16(off))
	if length == 0 {
		return "", nil
	}
	ptr := b.u64(off + 8)
	if ptr < uint64(b.Base) || ptr-uint64(b.Base) > uint64(len(b.Data)) {
		return "", invariant.Breach("string pointer %#x is outside of the buffer at %#x", ptr, b.Base)
	}
	start := int(ptr - uint64(b.Base))
	if err := invariant.Check(b.in(start, length), "string of %d bytes at offset %d overruns the buffer", length, start); err != nil {
		return "", err
	}
	return utf16.DecodeBytes(b.Data[start : start+length]), nil
}
