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
	"context"
	"fmt"
	"time"

	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/handle/types"
	"github.com/rabbitstack/objexp/pkg/record"
	log "github.com/sirupsen/logrus"
)

// EnumHandlesAndObjects refreshes the type registry and the process snapshot, and then walks
// the system handle table. Handles are deduplicated by the kernel address of the object they
// reference. The name of each distinct object is resolved through one of its handles when the
// object is first seen.
func (m *Manager) EnumHandlesAndObjects(ctx context.Context) error {
	m.cycle.Lock()
	defer m.cycle.Unlock()

	start := time.Now()
	if _, err := m.enumTypes(); err != nil {
		return fmt.Errorf("unable to refresh object types: %w", err)
	}
	if err := m.procs.Refresh(); err != nil {
		log.Warnf("handle owners may be stale: %v", err)
	}

	buf, err := record.Query(m.opts.handlesBufferSize, m.src.QueryHandles)
	if err != nil {
		return fmt.Errorf("unable to query system handles: %w", err)
	}
	recs, err := record.DecodeHandles(buf)
	if err != nil {
		return err
	}

	m.mu.RLock()
	processIndex, hasProcess := m.wellKnownIndex(handle.Process)
	threadIndex, hasThread := m.wellKnownIndex(handle.Thread)
	m.mu.RUnlock()

	skipName := func(index uint16) bool {
		return (hasProcess && index == processIndex) || (hasThread && index == threadIndex)
	}

	handles := make(types.Handles, 0, len(recs))
	objects := make([]*ObjectInfoEx, 0)
	byAddress := make(map[uint64]*ObjectInfoEx)

	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			m.release(objects)
			return err
		}
		h := types.FromRecord(r)
		handles = append(handles, h)

		if obj, ok := byAddress[r.Object]; ok {
			obj.HandleCount++
			obj.Handles = append(obj.Handles, h)
			continue
		}
		obj := &ObjectInfoEx{
			Address:     r.Object,
			TypeIndex:   r.TypeIndex,
			HandleCount: 1,
			Handles:     types.Handles{h},
		}
		m.resolveName(ctx, obj, skipName(r.TypeIndex))
		byAddress[r.Object] = obj
		objects = append(objects, obj)
	}

	m.mu.Lock()
	prev := m.objects
	m.handles, m.objects, m.byAddress = handles, objects, byAddress
	m.mu.Unlock()
	m.generation.Add(1)
	m.release(prev)

	cycles.Add("handles", 1)
	publishedObjects.Set(int64(len(objects)))
	log.WithFields(log.Fields{
		"handles":  len(handles),
		"objects":  len(objects),
		"duration": time.Since(start),
	}).Debug("system handles enumerated")

	return nil
}

// resolveName duplicates one of the object's handles and queries the object name. An
// unresolved name isn't an error. The objects of the probed type are queried under the
// probe timeout since their name query may block indefinitely.
func (m *Manager) resolveName(ctx context.Context, obj *ObjectInfoEx, skip bool) {
	local, reason, err := handle.Dup(m.src, obj.Handles, m.opts.dupAccess)
	if err != nil {
		obj.DupFailure = reason
		unresolvedNames.Add(1)
		log.Tracef("unable to duplicate handle of object %#x: %v", obj.Address, err)
		return
	}
	obj.local = local
	if skip {
		return
	}

	query := func() (string, error) {
		buf, err := record.Query(record.NameBufferSize, func(b []byte) error {
			return m.src.QueryObjectName(local, b)
		})
		if err != nil {
			return "", err
		}
		return record.DecodeObjectName(buf)
	}

	var name string
	if obj.TypeIndex == m.opts.probeTypeIndex {
		name, err = m.prober.Probe(ctx, query)
	} else {
		name, err = query()
	}
	if err != nil {
		unresolvedNames.Add(1)
		log.Tracef("unable to query name of object %#x: %v", obj.Address, err)
		return
	}
	obj.Name = name
}
