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

// EnumTypes refreshes the object type registry and returns the number of known types.
// The first call populates the registry. Subsequent calls update the existing entries
// in place and record a change for each type counter that differs from its previous value.
func (m *Manager) EnumTypes() (int, error) {
	m.cycle.Lock()
	defer m.cycle.Unlock()
	return m.enumTypes()
}

func (m *Manager) enumTypes() (int, error) {
	start := time.Now()
	buf, err := record.Query(m.opts.typesBufferSize, m.src.QueryObjectTypes)
	if err != nil {
		return 0, fmt.Errorf("unable to query object types: %w", err)
	}
	recs, err := record.DecodeObjectTypes(buf)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[uint16]struct{}, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.Index]; ok {
			return len(m.types), invariant.Breach("duplicate object type index %d (%s)", r.Index, r.Name)
		}
		seen[r.Index] = struct{}{}
	}

	if len(m.types) == 0 {
		m.populate(recs)
	} else {
		if len(recs) != len(m.types) {
			return len(m.types), invariant.Breach("object type count changed from %d to %d", len(m.types), len(recs))
		}
		for _, r := range recs {
			if _, ok := m.typeIndex[r.Index]; !ok {
				return len(m.types), invariant.Breach("unknown object type index %d (%s)", r.Index, r.Name)
			}
		}
		m.refresh(recs)
	}

	m.totalObjects, m.totalHandles = 0, 0
	for _, t := range m.types {
		m.totalObjects += uint64(t.TotalObjects)
		m.totalHandles += uint64(t.TotalHandles)
	}
	m.generation.Add(1)

	cycles.Add("types", 1)
	changeCount.Set(int64(len(m.changes)))
	log.WithFields(log.Fields{
		"types":    len(m.types),
		"changes":  len(m.changes),
		"objects":  m.totalObjects,
		"handles":  m.totalHandles,
		"duration": time.Since(start),
	}).Debug("object types enumerated")

	return len(m.types), nil
}

func (m *Manager) populate(recs []record.TypeRecord) {
	m.types = make([]*TypeInfoEx, 0, len(recs))
	for _, r := range recs {
		t := &TypeInfoEx{TypeRecord: r}
		t.Handler = m.updateKnownTypes(r.Name, r.Index)
		m.types = append(m.types, t)
		m.typeIndex[r.Index] = t
	}
	m.changes = nil
}

func (m *Manager) refresh(recs []record.TypeRecord) {
	changes := make([]Change, 0)
	for _, r := range recs {
		t := m.typeIndex[r.Index]
		changes = diff(changes, t, TotalHandlesDelta, t.TotalHandles, r.TotalHandles)
		changes = diff(changes, t, TotalObjectsDelta, t.TotalObjects, r.TotalObjects)
		changes = diff(changes, t, PeakHandlesDelta, t.HighWaterHandles, r.HighWaterHandles)
		changes = diff(changes, t, PeakObjectsDelta, t.HighWaterObjects, r.HighWaterObjects)
		t.TypeRecord = r
	}
	m.changes = changes
}

func diff(changes []Change, t *TypeInfoEx, kind ChangeKind, prev, cur uint32) []Change {
	if prev == cur {
		return changes
	}
	return append(changes, Change{
		TypeIndex: t.Index,
		TypeName:  t.Name,
		Kind:      kind,
		Delta:     int64(cur) - int64(prev),
	})
}
