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

package record_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/rabbitstack/objexp/pkg/record/recordtest"
	"github.com/rabbitstack/objexp/pkg/sys"
	"github.com/rabbitstack/objexp/pkg/util/invariant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base uintptr = 0x7ff6a0000000

func buffer(layout recordtest.Layout) *record.Buffer {
	return &record.Buffer{Data: layout(base), Base: base}
}

func TestQueryGrowsBuffer(t *testing.T) {
	var sizes []int
	buf, err := record.Query(100, func(b []byte) error {
		sizes = append(sizes, len(b))
		if len(b) < 1000 {
			return sys.ErrBufferTooSmall
		}
		b[0] = 0xaa
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200, 400, 800, 1600}, sizes)
	assert.Equal(t, 1600, buf.Len())
	assert.Equal(t, byte(0xaa), buf.Data[0])
	assert.NotZero(t, buf.Base)
}

func TestQueryStopsOnFailure(t *testing.T) {
	errAccessDenied := errors.New("access denied")
	var sizes []int
	_, err := record.Query(64, func(b []byte) error {
		sizes = append(sizes, len(b))
		if len(b) < 256 {
			return sys.ErrBufferTooSmall
		}
		return errAccessDenied
	})
	require.ErrorIs(t, err, errAccessDenied)
	assert.Equal(t, []int{64, 128, 256}, sizes)
}

func TestQueryGrowthBound(t *testing.T) {
	defer record.SetMaxBufferSize(1024)()

	var sizes []int
	buf, err := record.Query(100, func(b []byte) error {
		sizes = append(sizes, len(b))
		return sys.ErrBufferTooSmall
	})
	require.ErrorIs(t, err, sys.ErrBufferTooSmall)
	assert.Nil(t, buf)
	assert.Equal(t, []int{100, 200, 400, 800}, sizes)
}

func TestQueryFirstAttempt(t *testing.T) {
	calls := 0
	_, err := record.Query(record.TypesBufferSize, func(b []byte) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecodeSingleObjectType(t *testing.T) {
	buf := buffer(recordtest.Types(record.TypeRecord{
		Name:                      "Mutant",
		Index:                     17,
		TotalObjects:              1450,
		TotalHandles:              1732,
		HighWaterObjects:          2012,
		HighWaterHandles:          2300,
		TotalNamePoolUsage:        4096,
		GenericMapping:            record.GenericMapping{Read: 0x20001, Write: 0x20000, Execute: 0x100000, All: 0x1f0001},
		ValidAccessMask:           0x1f0001,
		SecurityRequired:          true,
		MaintainHandleCount:       true,
		PoolType:                  1,
		DefaultNonPagedPoolCharge: 88,
	}))

	types, err := record.DecodeObjectTypes(buf)
	require.NoError(t, err)
	require.Len(t, types, 1)

	typ := types[0]
	assert.Equal(t, "Mutant", typ.Name)
	assert.Equal(t, uint16(17), typ.Index)
	assert.Equal(t, uint32(1450), typ.TotalObjects)
	assert.Equal(t, uint32(1732), typ.TotalHandles)
	assert.Equal(t, uint32(2012), typ.HighWaterObjects)
	assert.Equal(t, uint32(2300), typ.HighWaterHandles)
	assert.Equal(t, uint32(4096), typ.TotalNamePoolUsage)
	assert.Equal(t, uint32(0x1f0001), typ.GenericMapping.All)
	assert.Equal(t, uint32(0x1f0001), typ.ValidAccessMask)
	assert.True(t, typ.SecurityRequired)
	assert.True(t, typ.MaintainHandleCount)
	assert.Equal(t, uint32(1), typ.PoolType)
	assert.Equal(t, uint32(88), typ.DefaultNonPagedPoolCharge)
}

func TestDecodeObjectTypesPadding(t *testing.T) {
	// odd name lengths force the next record onto the pointer boundary
	buf := buffer(recordtest.Types(
		record.TypeRecord{Name: "Key", Index: 2},
		record.TypeRecord{Name: "Event", Index: 3},
		record.TypeRecord{Name: "SymbolicLink", Index: 4},
	))
	types, err := record.DecodeObjectTypes(buf)
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, "Key", types[0].Name)
	assert.Equal(t, "Event", types[1].Name)
	assert.Equal(t, uint16(4), types[2].Index)
	assert.Equal(t, "SymbolicLink", types[2].Name)
}

func TestDecodeObjectTypesTruncated(t *testing.T) {
	data := recordtest.Types(
		record.TypeRecord{Name: "Key", Index: 2},
		record.TypeRecord{Name: "Event", Index: 3},
	)(base)
	// cut the buffer in the middle of the second type name
	data = data[:len(data)-10]
	types, err := record.DecodeObjectTypes(&record.Buffer{Data: data, Base: base})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
	require.Len(t, types, 1)
	assert.Equal(t, "Key", types[0].Name)
}

func TestDecodeObjectTypesCountOverrun(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, 0xffffffff)
	types, err := record.DecodeObjectTypes(&record.Buffer{Data: data, Base: base})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
	assert.Nil(t, types)

	// one record fits in the buffer, but the header claims two
	data = recordtest.Types(record.TypeRecord{Name: "Key", Index: 2})(base)
	binary.LittleEndian.PutUint32(data, 2)
	types, err = record.DecodeObjectTypes(&record.Buffer{Data: data, Base: base})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
	assert.Nil(t, types)
}

func TestDecodeSingleSystemObject(t *testing.T) {
	buf := buffer(recordtest.SystemObjects(record.ObjectTypeRecord{
		Name:            "Section",
		Index:           44,
		NumberOfHandles: 3,
		Waitable:        false,
		PoolType:        1,
		Objects: []record.ObjectRecord{
			{Object: 0xffffa50c4a2b1e70, CreatorPID: 4, HandleCount: 3, PointerCount: 65535, PagedPoolCharge: 512, Flags: 0x40, Name: `\BaseNamedObjects\__ComCatalogCache__`},
		},
	}))

	types, err := record.DecodeSystemObjects(buf)
	require.NoError(t, err)
	require.Len(t, types, 1)
	typ := types[0]
	assert.Equal(t, "Section", typ.Name)
	assert.Equal(t, uint16(44), typ.Index)
	assert.Equal(t, uint32(1), typ.NumberOfObjects)
	require.Len(t, typ.Objects, 1)

	obj := typ.Objects[0]
	assert.Equal(t, uint64(0xffffa50c4a2b1e70), obj.Object)
	assert.Equal(t, uint32(4), obj.CreatorPID)
	assert.Equal(t, int32(3), obj.HandleCount)
	assert.Equal(t, int32(65535), obj.PointerCount)
	assert.Equal(t, uint32(512), obj.PagedPoolCharge)
	assert.Equal(t, uint16(0x40), obj.Flags)
	assert.Equal(t, `\BaseNamedObjects\__ComCatalogCache__`, obj.Name)
}

func TestDecodeSystemObjectsLinked(t *testing.T) {
	buf := buffer(recordtest.SystemObjects(
		record.ObjectTypeRecord{Name: "Event", Index: 16, Objects: []record.ObjectRecord{
			{Object: 0x1000, Name: "a"},
			{Object: 0x2000},
			{Object: 0x3000, Name: "ccc"},
		}},
		record.ObjectTypeRecord{Name: "Timer", Index: 18},
		record.ObjectTypeRecord{Name: "Mutant", Index: 17, Objects: []record.ObjectRecord{
			{Object: 0x4000, CreatorPID: 1044},
		}},
	))

	types, err := record.DecodeSystemObjects(buf)
	require.NoError(t, err)
	require.Len(t, types, 3)
	require.Len(t, types[0].Objects, 3)
	assert.Equal(t, "ccc", types[0].Objects[2].Name)
	assert.Empty(t, types[0].Objects[1].Name)
	assert.Empty(t, types[1].Objects)
	assert.Equal(t, "Timer", types[1].Name)
	require.Len(t, types[2].Objects, 1)
	assert.Equal(t, uint32(1044), types[2].Objects[0].CreatorPID)
}

func TestDecodeSystemObjectsMisaligned(t *testing.T) {
	data := recordtest.SystemObjects(record.ObjectTypeRecord{Name: "Event", Index: 16, Objects: []record.ObjectRecord{{Object: 0x1000}}})(base)
	// stretch the type name maximum length so the first instance lands off the pointer boundary
	maxLen := binary.LittleEndian.Uint16(data[50:])
	binary.LittleEndian.PutUint16(data[50:], maxLen+2)

	_, err := record.DecodeSystemObjects(&record.Buffer{Data: data, Base: base})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
	assert.Contains(t, err.Error(), "misaligned")
}

func TestDecodeSingleHandle(t *testing.T) {
	buf := buffer(recordtest.Handles(record.HandleRecord{
		Object:     0xffffa50c4a2b1e70,
		PID:        6716,
		Value:      0x1c4,
		Access:     0x1f0003,
		TypeIndex:  37,
		Attributes: 0x2,
	}))
	handles, err := record.DecodeHandles(buf)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, record.HandleRecord{
		Object:     0xffffa50c4a2b1e70,
		PID:        6716,
		Value:      0x1c4,
		Access:     0x1f0003,
		TypeIndex:  37,
		Attributes: 0x2,
	}, handles[0])
}

func TestDecodeHandlesOverrun(t *testing.T) {
	data := recordtest.Handles(record.HandleRecord{Object: 1})(base)
	binary.LittleEndian.PutUint64(data, 1000)
	_, err := record.DecodeHandles(&record.Buffer{Data: data, Base: base})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
}

func TestDecodeObjectName(t *testing.T) {
	name, err := record.DecodeObjectName(buffer(recordtest.ObjectName(`\Device\NamedPipe\objexp`)))
	require.NoError(t, err)
	assert.Equal(t, `\Device\NamedPipe\objexp`, name)

	name, err = record.DecodeObjectName(buffer(recordtest.ObjectName("")))
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestDecodeStringOutsideBuffer(t *testing.T) {
	data := recordtest.ObjectName(`\KernelObjects\LowMemoryCondition`)(base)
	binary.LittleEndian.PutUint64(data[8:], uint64(base)-64)
	_, err := record.DecodeObjectName(&record.Buffer{Data: data, Base: base})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
}

func TestFillTooSmall(t *testing.T) {
	fill := recordtest.Fill(recordtest.Handles(record.HandleRecord{Object: 1}, record.HandleRecord{Object: 2}))
	buf, err := record.Query(16, fill)
	require.NoError(t, err)
	handles, err := record.DecodeHandles(buf)
	require.NoError(t, err)
	assert.Len(t, handles, 2)
}
