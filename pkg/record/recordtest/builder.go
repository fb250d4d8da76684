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

// Package recordtest builds synthetic buffers laid out the way the system
// introspection calls fill them.
package recordtest

import (
	"encoding/binary"
	"unicode/utf16"
	"unsafe"

	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/rabbitstack/objexp/pkg/sys"
)

// Layout produces the buffer contents for the given base address.
type Layout func(base uintptr) []byte

// Fill returns the fill function that copies the layout into the caller buffer,
// or reports the buffer is too small to hold it.
func Fill(layout Layout) record.FillFunc {
	return func(b []byte) error {
		data := layout(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
		if len(data) > len(b) {
			return sys.ErrBufferTooSmall
		}
		copy(b, data)
		return nil
	}
}

// Types lays out the object types information block.
func Types(types ...record.TypeRecord) Layout {
	return func(base uintptr) []byte {
		w := &writer{base: base}
		w.u32(0, uint32(len(types)))
		off := w.alignUp(4)
		for _, t := range types {
			name := encode(t.Name)
			w.unicodeString(off, name, len(name)+2, off+record.TypeInfoSize)
			w.u32(off+16, t.TotalObjects)
			w.u32(off+20, t.TotalHandles)
			w.u32(off+24, t.TotalPagedPoolUsage)
			w.u32(off+28, t.TotalNonPagedPoolUsage)
			w.u32(off+32, t.TotalNamePoolUsage)
			w.u32(off+36, t.TotalHandleTableUsage)
			w.u32(off+40, t.HighWaterObjects)
			w.u32(off+44, t.HighWaterHandles)
			w.u32(off+48, t.HighWaterPagedPoolUsage)
			w.u32(off+52, t.HighWaterNonPagedPoolUsage)
			w.u32(off+56, t.HighWaterNamePoolUsage)
			w.u32(off+60, t.HighWaterHandleTableUsage)
			w.u32(off+64, t.InvalidAttributes)
			w.mapping(off+68, t.GenericMapping)
			w.u32(off+84, t.ValidAccessMask)
			w.bool(off+88, t.SecurityRequired)
			w.bool(off+89, t.MaintainHandleCount)
			w.u8(off+90, uint8(t.Index))
			w.u32(off+92, t.PoolType)
			w.u32(off+96, t.DefaultPagedPoolCharge)
			w.u32(off+100, t.DefaultNonPagedPoolCharge)
			off = w.alignUp(off + record.TypeInfoSize + len(name) + 2)
		}
		w.grow(off)
		return w.b
	}
}

// SystemObjects lays out the system objects information block. Each type's
// NumberOfObjects is taken from the number of attached object records.
func SystemObjects(types ...record.ObjectTypeRecord) Layout {
	return func(base uintptr) []byte {
		w := &writer{base: base}
		off := 0
		for i, t := range types {
			name := encode(t.Name)
			maxLen := w.alignSize(len(name) + 2)
			w.unicodeString(off+48, name, maxLen, off+record.ObjectTypeInfoSize)
			w.u32(off+4, uint32(len(t.Objects)))
			w.u32(off+8, t.NumberOfHandles)
			w.u32(off+12, uint32(t.Index))
			w.u32(off+16, t.InvalidAttributes)
			w.mapping(off+20, t.GenericMapping)
			w.u32(off+36, t.ValidAccessMask)
			w.u32(off+40, t.PoolType)
			w.bool(off+44, t.SecurityRequired)
			w.bool(off+45, t.Waitable)

			typeOff := off
			off += record.ObjectTypeInfoSize + maxLen
			for j, o := range t.Objects {
				name := encode(o.Name)
				maxLen := w.alignSize(len(name) + 2)
				w.u64(off+8, o.Object)
				w.u64(off+16, uint64(o.CreatorPID))
				w.u16(off+24, o.CreatorBackTraceIndex)
				w.u16(off+26, o.Flags)
				w.u32(off+28, uint32(o.PointerCount))
				w.u32(off+32, uint32(o.HandleCount))
				w.u32(off+36, o.PagedPoolCharge)
				w.u32(off+40, o.NonPagedPoolCharge)
				w.u64(off+48, uint64(o.ExclusivePID))
				w.unicodeString(off+64, name, maxLen, off+record.ObjectInfoSize)
				next := off + record.ObjectInfoSize + maxLen
				if j < len(t.Objects)-1 {
					w.u32(off, uint32(next))
				}
				off = next
			}
			w.grow(off)
			if i < len(types)-1 {
				w.u32(typeOff, uint32(off))
			}
		}
		return w.b
	}
}

// Handles lays out the extended system handle table.
func Handles(handles ...record.HandleRecord) Layout {
	return func(base uintptr) []byte {
		w := &writer{base: base}
		w.u64(0, uint64(len(handles)))
		w.grow(record.HandleTableHeaderSize)
		for i, h := range handles {
			off := record.HandleTableHeaderSize + i*record.HandleEntrySize
			w.u64(off, h.Object)
			w.u64(off+8, uint64(h.PID))
			w.u64(off+16, h.Value)
			w.u32(off+24, h.Access)
			w.u16(off+30, h.TypeIndex)
			w.u32(off+32, h.Attributes)
			w.grow(off + record.HandleEntrySize)
		}
		return w.b
	}
}

// ObjectName lays out the object name information block.
func ObjectName(name string) Layout {
	return func(base uintptr) []byte {
		w := &writer{base: base}
		s := encode(name)
		w.unicodeString(0, s, len(s)+2, 16)
		w.grow(16 + len(s) + 2)
		return w.b
	}
}

type writer struct {
	b    []byte
	base uintptr
}

func (w *writer) grow(n int) {
	if n > len(w.b) {
		w.b = append(w.b, make([]byte, n-len(w.b))...)
	}
}

func (w *writer) alignUp(off int) int {
	addr := (w.base + uintptr(off) + record.PtrSize - 1) &^ (record.PtrSize - 1)
	return int(addr - w.base)
}

func (w *writer) alignSize(n int) int { return (n + record.PtrSize - 1) &^ (record.PtrSize - 1) }

func (w *writer) u8(off int, v uint8) {
	w.grow(off + 1)
	w.b[off] = v
}

func (w *writer) bool(off int, v bool) {
	if v {
		w.u8(off, 1)
	} else {
		w.u8(off, 0)
	}
}

func (w *writer) u16(off int, v uint16) {
	w.grow(off + 2)
	binary.LittleEndian.PutUint16(w.b[off:], v)
}

func (w *writer) u32(off int, v uint32) {
	w.grow(off + 4)
	binary.LittleEndian.PutUint32(w.b[off:], v)
}

func (w *writer) u64(off int, v uint64) {
	w.grow(off + 8)
	binary.LittleEndian.PutUint64(w.b[off:], v)
}

func (w *writer) mapping(off int, m record.GenericMapping) {
	w.u32(off, m.Read)
	w.u32(off+4, m.Write)
	w.u32(off+8, m.Execute)
	w.u32(off+12, m.All)
}

// unicodeString writes the string descriptor at off and the string
// characters at the data offset.
func (w *writer) unicodeString(off int, s []byte, maxLen int, data int) {
	w.u16(off, uint16(len(s)))
	w.u16(off+2, uint16(maxLen))
	if len(s) > 0 {
		w.u64(off+8, uint64(w.base)+uint64(data))
	} else {
		w.u64(off+8, 0)
	}
	w.grow(data + maxLen)
	copy(w.b[data:], s)
}

func encode(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, len(u)*2)
	for i, c := range u {
		binary.LittleEndian.PutUint16(b[i*2:], c)
	}
	return b
}
