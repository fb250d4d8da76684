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

// Package ps keeps the snapshot of running processes used to annotate object creators
// and handle owners with the process image name.
package ps

import (
	"expvar"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	processCount    = expvar.NewInt("ps.count")
	refreshFailures = expvar.NewInt("ps.refresh.failures")
)

// ProcessInfo is the process identifier along with the process image name.
type ProcessInfo struct {
	PID  uint32 `json:"pid"`
	Name string `json:"name"`
}

// String returns the process info in the name (pid) form.
func (p ProcessInfo) String() string { return fmt.Sprintf("%s (%d)", p.Name, p.PID) }

// Lister enumerates the processes running at the instant of the call.
type Lister interface {
	// Processes returns the identifiers and names of all running processes.
	Processes() ([]ProcessInfo, error)
}

// Resolver maps process identifiers to process names. The mapping is rebuilt on
// every refresh and readers always observe a complete snapshot.
type Resolver struct {
	mu     sync.RWMutex
	procs  map[uint32]ProcessInfo
	lister Lister
}

// NewResolver creates the resolver that sources the processes from the given lister.
func NewResolver(lister Lister) *Resolver {
	return &Resolver{procs: make(map[uint32]ProcessInfo), lister: lister}
}

// Refresh rebuilds the process snapshot. If the lister fails, the previous snapshot is kept.
func (r *Resolver) Refresh() error {
	procs, err := r.lister.Processes()
	if err != nil {
		refreshFailures.Add(1)
		return fmt.Errorf("unable to enumerate processes: %w", err)
	}
	m := make(map[uint32]ProcessInfo, len(procs))
	for _, proc := range procs {
		m[proc.PID] = proc
	}

	r.mu.Lock()
	r.procs = m
	r.mu.Unlock()

	processCount.Set(int64(len(m)))
	log.Debugf("process snapshot refreshed with %d processes", len(m))

	return nil
}

// NameByID returns the name of the process with the specified identifier or
// an empty string if the process is not in the snapshot.
func (r *Resolver) NameByID(pid uint32) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.procs[pid].Name
}

// Find returns the process info for the given identifier.
func (r *Resolver) Find(pid uint32) (ProcessInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	proc, ok := r.procs[pid]
	return proc, ok
}

// Len returns the number of processes in the snapshot.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.procs)
}

// Processes returns the snapshot processes ordered by process identifier.
func (r *Resolver) Processes() []ProcessInfo {
	r.mu.RLock()
	procs := make([]ProcessInfo, 0, len(r.procs))
	for _, proc := range r.procs {
		procs = append(procs, proc)
	}
	r.mu.RUnlock()
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs
}
