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

// Package objtype maps the well-known object type names to the type handlers
// describing the type specific capabilities.
package objtype

import (
	"fmt"
	"strings"

	"github.com/rabbitstack/objexp/pkg/handle"
)

// Kind is the closed set of type handler variants.
type Kind uint8

const (
	// None is the kind of types without the specialized handler.
	None Kind = iota
	// Mutex is the mutant type handler.
	Mutex
	// Process is the process type handler.
	Process
	// Thread is the thread type handler.
	Thread
	// Semaphore is the semaphore type handler.
	Semaphore
	// Section is the section type handler.
	Section
	// Event is the event type handler.
	Event
)

var kinds = map[string]Kind{
	handle.Mutant:    Mutex,
	handle.Process:   Process,
	handle.Thread:    Thread,
	handle.Semaphore: Semaphore,
	handle.Section:   Section,
	handle.Event:     Event,
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Mutex:
		return "Mutex"
	case Process:
		return "Process"
	case Thread:
		return "Thread"
	case Semaphore:
		return "Semaphore"
	case Section:
		return "Section"
	case Event:
		return "Event"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// KindOf returns the handler kind for the type name.
func KindOf(name string) Kind { return kinds[name] }

// Handler describes the capabilities of the object type it was created for.
type Handler struct {
	Kind  Kind
	Index uint16
	Name  string
}

// New creates the handler for the type with the given index and name. It
// returns nil if the type has no specialized handler.
func New(index uint16, name string) *Handler {
	kind := KindOf(name)
	if kind == None {
		return nil
	}
	return &Handler{Kind: kind, Index: index, Name: name}
}

// KindOrNone returns the handler kind, or None for the nil handler.
func (h *Handler) KindOrNone() Kind {
	if h == nil {
		return None
	}
	return h.Kind
}

// String returns the handler description.
func (h *Handler) String() string {
	if h == nil {
		return None.String()
	}
	return fmt.Sprintf("%s (%s, %d)", h.Kind, h.Name, h.Index)
}

// AccessRights returns the type specific access rights.
func (h *Handler) AccessRights() []AccessRight {
	if h == nil {
		return nil
	}
	return rights[h.Kind].specific
}

// AllAccess returns the access mask that grants all type specific and standard rights.
func (h *Handler) AllAccess() uint32 {
	if h == nil {
		return 0
	}
	return rights[h.Kind].all.Mask
}

// DefaultAccess is the access requested when duplicating handles to inspect the objects of this type.
func (h *Handler) DefaultAccess() uint32 {
	if h == nil {
		return handle.QueryAccess
	}
	return rights[h.Kind].query
}

// Waitable determines if the objects of this type can be waited on.
func (h *Handler) Waitable() bool {
	return h != nil && h.Kind != Section
}

// FormatAccess renders the granted access mask with the names of the type specific and
// the standard rights. Bits not covered by any known right are rendered in hex.
func (h *Handler) FormatAccess(mask uint32) string {
	if mask == 0 {
		return "0x0"
	}
	if h != nil && mask == rights[h.Kind].all.Mask {
		return rights[h.Kind].all.Name
	}
	names := make([]string, 0, 8)
	rest := mask
	for _, set := range [][]AccessRight{h.AccessRights(), standardRights} {
		for _, r := range set {
			if rest&r.Mask == r.Mask {
				names = append(names, r.Name)
				rest &^= r.Mask
			}
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("%#x", rest))
	}
	return strings.Join(names, " | ")
}
