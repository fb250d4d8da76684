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
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/ps"
	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/rabbitstack/objexp/pkg/record/recordtest"
)

// fakeSource serves synthetic buffers. Duplicated handles are the
// remote handle values, and object names are keyed by them.
type fakeSource struct {
	mu      sync.Mutex
	types   recordtest.Layout
	objects recordtest.Layout
	handles recordtest.Layout
	procs   []ps.ProcessInfo

	names    map[uint64]string
	blocking map[uint64]chan struct{}
	denied   map[uint32]error

	nameQueries atomic.Int32
	lastAccess  atomic.Uint32
	closed      []uintptr
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		types:    recordtest.Types(),
		objects:  recordtest.SystemObjects(),
		handles:  recordtest.Handles(),
		names:    make(map[uint64]string),
		blocking: make(map[uint64]chan struct{}),
		denied:   make(map[uint32]error),
	}
}

func (f *fakeSource) setTypes(types ...record.TypeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = recordtest.Types(types...)
}

func (f *fakeSource) setObjects(types ...record.ObjectTypeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = recordtest.SystemObjects(types...)
}

func (f *fakeSource) setHandles(handles ...record.HandleRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handles = recordtest.Handles(handles...)
}

func (f *fakeSource) QueryObjectTypes(b []byte) error {
	f.mu.Lock()
	l := f.types
	f.mu.Unlock()
	return recordtest.Fill(l)(b)
}

func (f *fakeSource) QuerySystemObjects(b []byte) error {
	f.mu.Lock()
	l := f.objects
	f.mu.Unlock()
	return recordtest.Fill(l)(b)
}

func (f *fakeSource) QueryHandles(b []byte) error {
	f.mu.Lock()
	l := f.handles
	f.mu.Unlock()
	return recordtest.Fill(l)(b)
}

func (f *fakeSource) QueryObjectName(h uintptr, b []byte) error {
	f.nameQueries.Add(1)
	f.mu.Lock()
	block := f.blocking[uint64(h)]
	name := f.names[uint64(h)]
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return recordtest.Fill(recordtest.ObjectName(name))(b)
}

func (f *fakeSource) Duplicate(value uint64, pid uint32, access uint32) (uintptr, error) {
	f.lastAccess.Store(access)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.denied[pid]; err != nil {
		return 0, err
	}
	return uintptr(value), nil
}

func (f *fakeSource) Close(h uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, h)
	return nil
}

func (f *fakeSource) Processes() ([]ps.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.procs, nil
}

func (f *fakeSource) closedHandles() []uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uintptr(nil), f.closed...)
}

func newTestManager(src Source, opts ...Option) *Manager {
	opts = append([]Option{
		WithTypesBufferSize(64),
		WithObjectsBufferSize(128),
		WithHandlesBufferSize(64),
		WithProber(handle.NewProber(10 * time.Millisecond)),
	}, opts...)
	return New(src, opts...)
}

var baseTypes = []record.TypeRecord{
	{Name: "Directory", Index: 3, TotalObjects: 112, TotalHandles: 480, HighWaterObjects: 115, HighWaterHandles: 512},
	{Name: "Process", Index: 7, TotalObjects: 201, TotalHandles: 3921, HighWaterObjects: 260, HighWaterHandles: 4100},
	{Name: "Thread", Index: 8, TotalObjects: 2654, TotalHandles: 5012, HighWaterObjects: 3001, HighWaterHandles: 6120},
	{Name: "Event", Index: 16, TotalObjects: 14800, TotalHandles: 15210, HighWaterObjects: 16001, HighWaterHandles: 16520},
	{Name: "Mutant", Index: 17, TotalObjects: 1450, TotalHandles: 1732, HighWaterObjects: 2012, HighWaterHandles: 2300},
	{Name: "Semaphore", Index: 18, TotalObjects: 3100, TotalHandles: 3300, HighWaterObjects: 3400, HighWaterHandles: 3600},
	{Name: "File", Index: 37, TotalObjects: 9800, TotalHandles: 10400, HighWaterObjects: 12000, HighWaterHandles: 12800},
	{Name: "Key", Index: 44, TotalObjects: 5100, TotalHandles: 5120, HighWaterObjects: 5600, HighWaterHandles: 5700},
}

func cloneTypes() []record.TypeRecord { return append([]record.TypeRecord(nil), baseTypes...) }
