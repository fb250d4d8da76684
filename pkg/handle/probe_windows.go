//go:build windows

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

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rabbitstack/objexp/pkg/sys"
	"golang.org/x/sys/windows"
)

var (
	// probers maps the prober identifier passed to the query thread to its prober
	probers  sync.Map
	proberID atomic.Uintptr

	callbackOnce sync.Once
	callback     uintptr
)

// threadProber runs the queries in a native thread. The thread is reused across invocations
// as it is blocked waiting to be signaled by the init event, and signals back the done event
// after the query completes. If the query thread doesn't signal the done event in time, it is
// killed. Subsequent probes recreate the thread when it is not alive.
type threadProber struct {
	id      uintptr
	timeout time.Duration

	mu     sync.Mutex
	thread windows.Handle
	ini    windows.Handle
	done   windows.Handle

	query QueryFunc
	res   result
}

// NewThreadProber returns the prober that executes the query on a disposable native thread
// and terminates the thread on timeout.
func NewThreadProber(timeout time.Duration) (Prober, error) {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ini, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't create init event: %v", err)
	}
	done, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		_ = windows.CloseHandle(ini)
		return nil, fmt.Errorf("couldn't create done event: %v", err)
	}
	callbackOnce.Do(func() { callback = syscall.NewCallback(queryThread) })

	p := &threadProber{id: proberID.Add(1), timeout: timeout, ini: ini, done: done}
	probers.Store(p.id, p)
	return p, nil
}

func (p *threadProber) Probe(ctx context.Context, query QueryFunc) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.thread == 0 {
		if err := windows.ResetEvent(p.ini); err != nil {
			return "", fmt.Errorf("couldn't reset init event: %v", err)
		}
		if err := windows.ResetEvent(p.done); err != nil {
			return "", fmt.Errorf("couldn't reset done event: %v", err)
		}
		h, err := sys.CreateThread(nil, 0, callback, p.id, 0, nil)
		if err != nil {
			return "", fmt.Errorf("cannot create object query thread: %v", err)
		}
		p.thread = h
	}

	ms, ok := waitMillis(ctx, p.timeout)
	if !ok {
		probeTimeouts.Add(1)
		return "", ErrProbeTimeout
	}

	p.query = query
	if err := windows.SetEvent(p.ini); err != nil {
		return "", err
	}

	s, err := windows.WaitForSingleObject(p.done, ms)
	if err != nil {
		return "", fmt.Errorf("failed awaiting object query: %v", err)
	}
	switch s {
	case syscall.WAIT_OBJECT_0:
		return p.res.name, p.res.err
	case syscall.WAIT_TIMEOUT:
		probeTimeouts.Add(1)
		// kill the thread and wait for its termination to orderly cleanup resources
		if err := sys.TerminateThread(p.thread, 0); err != nil {
			return "", fmt.Errorf("unable to terminate object query thread: %v", err)
		}
		if _, err := windows.WaitForSingleObject(p.thread, ms); err != nil {
			return "", fmt.Errorf("failed awaiting object query thread termination: %v", err)
		}
		_ = windows.CloseHandle(p.thread)
		p.thread = 0
		return "", ErrProbeTimeout
	default:
		return "", fmt.Errorf("unexpected object query wait status %#x", s)
	}
}

// Close terminates the query thread and releases the events.
func (p *threadProber) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	probers.Delete(p.id)
	if p.thread != 0 {
		_ = sys.TerminateThread(p.thread, 0)
		_ = windows.CloseHandle(p.thread)
		p.thread = 0
	}
	if err := windows.CloseHandle(p.ini); err != nil {
		_ = windows.CloseHandle(p.done)
		return err
	}
	return windows.CloseHandle(p.done)
}

func queryThread(id uintptr) uintptr {
	v, ok := probers.Load(id)
	if !ok {
		return 0
	}
	p := v.(*threadProber)
	for {
		s, err := windows.WaitForSingleObject(p.ini, windows.INFINITE)
		if err != nil || s != syscall.WAIT_OBJECT_0 {
			break
		}
		name, err := p.query()
		p.res = result{name: name, err: err}
		if err := windows.SetEvent(p.done); err != nil {
			break
		}
	}
	return 0
}
