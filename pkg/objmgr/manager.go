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

// Package objmgr is the object manager model. It enumerates the object types, the
// object instances and the system handle table, correlates handles to the objects
// they reference and tracks the type counters between successive enumerations.
//
// Enumeration cycles are serialized. Each cycle builds its collections privately
// and publishes them at the end, so readers always observe complete snapshots.
package objmgr

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/handle/types"
	"github.com/rabbitstack/objexp/pkg/ps"
	log "github.com/sirupsen/logrus"
)

// ErrTypeNotFound is returned when the type index was never observed by the registry.
var ErrTypeNotFound = errors.New("object type not found")

// Manager owns the object type registry and the results of the enumerations.
type Manager struct {
	src    Source
	opts   options
	procs  *ps.Resolver
	prober handle.Prober

	// cycle serializes the enumerations
	cycle sync.Mutex
	// mu guards the published collections
	mu sync.RWMutex

	types     []*TypeInfoEx
	typeIndex map[uint16]*TypeInfoEx
	changes   []Change

	totalObjects uint64
	totalHandles uint64

	knownIndex [len(wellKnownNames)]uint16
	known      *bitset.BitSet

	allTypes   []*TypeInfo
	typeArena  map[uint16]*TypeInfo
	allObjects []*ObjectInfo

	handles   types.Handles
	objects   []*ObjectInfoEx
	byAddress map[uint64]*ObjectInfoEx

	generation atomic.Uint64
}

// New creates the object manager on top of the given source.
func New(src Source, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.prober == nil {
		o.prober = newProber(o.probeTimeout)
	}
	return &Manager{
		src:       src,
		opts:      o,
		procs:     ps.NewResolver(src),
		prober:    o.prober,
		typeIndex: make(map[uint16]*TypeInfoEx),
		known:     bitset.New(uint(len(wellKnownNames))),
		typeArena: make(map[uint16]*TypeInfo),
		byAddress: make(map[uint64]*ObjectInfoEx),
	}
}

// Generation returns the number of collections published so far. It is
// incremented every time an enumeration publishes its results.
func (m *Manager) Generation() uint64 { return m.generation.Load() }

// GetType returns the registry entry for the type index.
func (m *Manager) GetType(index uint16) (*TypeInfoEx, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.typeIndex[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrTypeNotFound, index)
	}
	c := *t
	return &c, nil
}

// Types returns the registry entries in the order reported by the system.
func (m *Manager) Types() []TypeInfoEx {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]TypeInfoEx, len(m.types))
	for i, t := range m.types {
		types[i] = *t
	}
	return types
}

// TypeName returns the name of the type with the given index or an empty string.
func (m *Manager) TypeName(index uint16) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.typeIndex[index]; ok {
		return t.Name
	}
	if t, ok := m.typeArena[index]; ok {
		return t.Name
	}
	return ""
}

// Changes returns the counter changes observed on the last registry refresh.
func (m *Manager) Changes() []Change {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Change(nil), m.changes...)
}

// TotalObjects returns the number of objects across all types.
func (m *Manager) TotalObjects() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalObjects
}

// TotalHandles returns the number of handles across all types.
func (m *Manager) TotalHandles() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalHandles
}

// AllTypeObjects returns the types built by the last full object enumeration.
func (m *Manager) AllTypeObjects() []*TypeInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allTypes
}

// TypeObjects returns the type with the given index built by the last full object enumeration.
func (m *Manager) TypeObjects(index uint16) (*TypeInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.typeArena[index]
	return t, ok
}

// AllObjects returns the objects discovered by the last full object enumeration.
func (m *Manager) AllObjects() []*ObjectInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allObjects
}

// Objects returns the deduplicated objects built from the last handle table enumeration.
func (m *Manager) Objects() []*ObjectInfoEx {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects
}

// Handles returns the rows of the last enumerated handle table.
func (m *Manager) Handles() types.Handles {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handles
}

// ObjectByAddress returns the deduplicated object referenced by the kernel address.
func (m *Manager) ObjectByAddress(addr uint64) (*ObjectInfoEx, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.byAddress[addr]
	return obj, ok
}

// ProcessName returns the name of the process from the last process snapshot.
func (m *Manager) ProcessName(pid uint32) string { return m.procs.NameByID(pid) }

// Processes returns the last process snapshot.
func (m *Manager) Processes() []ps.ProcessInfo { return m.procs.Processes() }

// DupHandle duplicates one of the object's handles into the local process. If the access
// is zero, the default access of the object type handler is requested. The caller owns the
// returned handle and releases it with CloseHandle.
func (m *Manager) DupHandle(obj *ObjectInfoEx, access uint32) (uintptr, error) {
	if access == 0 {
		access = m.opts.dupAccess
		if t, err := m.GetType(obj.TypeIndex); err == nil && t.Handler != nil {
			access = t.Handler.DefaultAccess()
		}
	}
	h, reason, err := handle.Dup(m.src, obj.Handles, access)
	if err != nil {
		return 0, fmt.Errorf("unable to duplicate any handle of object %#x (%s): %w", obj.Address, reason, err)
	}
	return h, nil
}

// CloseHandle releases the handle obtained by DupHandle.
func (m *Manager) CloseHandle(h uintptr) error { return m.src.Close(h) }

// Close releases the handles duplicated for the name queries and disposes the prober.
func (m *Manager) Close() error {
	m.cycle.Lock()
	defer m.cycle.Unlock()

	m.mu.Lock()
	objects := m.objects
	m.objects, m.handles = nil, nil
	m.byAddress = make(map[uint64]*ObjectInfoEx)
	m.mu.Unlock()

	m.release(objects)
	return m.prober.Close()
}

// release closes the local handles of the discarded objects.
func (m *Manager) release(objects []*ObjectInfoEx) {
	for _, obj := range objects {
		if obj.local == 0 {
			continue
		}
		if err := m.src.Close(obj.local); err != nil {
			log.Debugf("unable to close duplicated handle of object %#x: %v", obj.Address, err)
		}
		obj.local = 0
	}
}
