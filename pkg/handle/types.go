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

package handle

import "strings"

const (
	// ALPCPort represents the ALPC (Advanced Local Procedure Call) object ports
	ALPCPort = "ALPC Port"
	// Directory designates directory objects. They exist only within the object manager scope and do not correspond to any directory on the disk.
	Directory = "Directory"
	Event     = "Event"
	// File designates file handles (e.g. pipe, device, mailslot)
	File         = "File"
	Key          = "Key"
	Job          = "Job"
	SymbolicLink = "SymbolicLink"
	Thread       = "Thread"
	Semaphore    = "Semaphore"
	Section      = "Section"
	Mutant       = "Mutant"
	Token        = "Token"
	Timer        = "Timer"
	Desktop      = "Desktop"
	Process      = "Process"
)

var shortNames = map[string]string{
	ALPCPort:     "alpc",
	Directory:    "d",
	Event:        "e",
	File:         "f",
	Key:          "k",
	Job:          "job",
	Mutant:       "mu",
	Process:      "ps",
	Thread:       "th",
	Section:      "sec",
	Semaphore:    "sem",
	SymbolicLink: "ln",
	Token:        "tok",
	Timer:        "tmr",
	Desktop:      "desk",
}

// GetShortName returns the short name for the object type. Types without
// the short alias are returned as they are.
func GetShortName(typ string) string {
	if short, ok := shortNames[typ]; ok {
		return short
	}
	return typ
}

// MatchType determines whether the type name is selected by the filter. The
// filter is either the type name or its short alias, ignoring the case.
func MatchType(typ, filter string) bool {
	return strings.EqualFold(typ, filter) || strings.EqualFold(GetShortName(typ), filter)
}
