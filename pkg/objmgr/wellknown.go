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
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/objtype"
)

// wellKnownNames are the types whose indices are recorded when first registered.
var wellKnownNames = [...]string{
	handle.Process,
	handle.Thread,
	handle.Mutant,
	handle.Event,
	handle.Job,
	handle.SymbolicLink,
	handle.Directory,
	handle.Section,
	handle.Key,
}

// UpdateKnownTypes records the index of the well-known type name and returns the handler
// for the type. Each well-known name is matched at most once.
func (m *Manager) UpdateKnownTypes(name string, index uint16) *objtype.Handler {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateKnownTypes(name, index)
}

func (m *Manager) updateKnownTypes(name string, index uint16) *objtype.Handler {
	for slot, n := range wellKnownNames {
		if n != name || m.known.Test(uint(slot)) {
			continue
		}
		m.known.Set(uint(slot))
		m.knownIndex[slot] = index
		break
	}
	return objtype.New(index, name)
}

// WellKnownIndex returns the index of the well-known type name.
func (m *Manager) WellKnownIndex(name string) (uint16, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wellKnownIndex(name)
}

func (m *Manager) wellKnownIndex(name string) (uint16, bool) {
	for slot, n := range wellKnownNames {
		if n == name && m.known.Test(uint(slot)) {
			return m.knownIndex[slot], true
		}
	}
	return 0, false
}
