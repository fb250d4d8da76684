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
	"time"

	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/rabbitstack/objexp/pkg/util/invariant"
	log "github.com/sirupsen/logrus"
)

// EnumObjects enumerates all object types along with their live instances. The types are
// rebuilt on every call and keyed by the type index. Each object is annotated with the
// name of the creator process.
func (m *Manager) EnumObjects() error {
	m.cycle.Lock()
	defer m.cycle.Unlock()

	start := time.Now()
	if err := m.procs.Refresh(); err != nil {
		log.Warnf("creator names may be stale: %v", err)
	}

	buf, err := record.Query(m.opts.objectsBufferSize, m.src.QuerySystemObjects)
	if err != nil {
		return fmt.Errorf("unable to query system objects: %w", err)
	}
	recs, err := record.DecodeSystemObjects(buf)
	if err != nil {
		return err
	}

	allTypes := make([]*TypeInfo, 0, len(recs))
	arena := make(map[uint16]*TypeInfo, len(recs))
	allObjects := make([]*ObjectInfo, 0)

	for _, r := range recs {
		if _, ok := arena[r.Index]; ok {
			return invariant.Breach("object type index %d (%s) reported twice", r.Index, r.Name)
		}
		t := &TypeInfo{
			Index:             r.Index,
			Name:              r.Name,
			GenericMapping:    r.GenericMapping,
			InvalidAttributes: r.InvalidAttributes,
			ValidAccessMask:   r.ValidAccessMask,
			PoolType:          r.PoolType,
			SecurityRequired:  r.SecurityRequired,
			Waitable:          r.Waitable,
			NumberOfObjects:   r.NumberOfObjects,
			NumberOfHandles:   r.NumberOfHandles,
			Objects:           make([]*ObjectInfo, 0, len(r.Objects)),
		}
		for _, o := range r.Objects {
			obj := &ObjectInfo{
				Address:            o.Object,
				TypeIndex:          r.Index,
				Name:               o.Name,
				HandleCount:        o.HandleCount,
				PointerCount:       o.PointerCount,
				PagedPoolCharge:    o.PagedPoolCharge,
				NonPagedPoolCharge: o.NonPagedPoolCharge,
				Flags:              o.Flags,
				ExclusivePID:       o.ExclusivePID,
				CreatorPID:         o.CreatorPID,
				CreatorName:        m.procs.NameByID(o.CreatorPID),
			}
			t.Objects = append(t.Objects, obj)
			allObjects = append(allObjects, obj)
		}
		allTypes = append(allTypes, t)
		arena[r.Index] = t
	}

	m.mu.Lock()
	m.allTypes, m.typeArena, m.allObjects = allTypes, arena, allObjects
	m.mu.Unlock()
	m.generation.Add(1)

	cycles.Add("objects", 1)
	log.WithFields(log.Fields{
		"types":    len(allTypes),
		"objects":  len(allObjects),
		"duration": time.Since(start),
	}).Debug("system objects enumerated")

	return nil
}
