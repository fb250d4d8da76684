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
	"errors"
	"expvar"
	"math"
	"time"
)

// DefaultProbeTimeout is the wall-clock bound of the object name query.
const DefaultProbeTimeout = 10 * time.Millisecond

// ErrProbeTimeout is returned when the query doesn't complete within the probe timeout.
var ErrProbeTimeout = errors.New("couldn't resolve object name due to timeout")

var probeTimeouts = expvar.NewInt("handle.probe.timeouts")

// QueryFunc runs the potentially blocking object query and returns the object name.
// The query must only touch its private buffer and the handle it was given.
type QueryFunc func() (string, error)

// Prober runs the object queries that are under the risk of hanging the caller.
type Prober interface {
	// Probe runs the query and waits for its completion at most for the prober timeout.
	// ErrProbeTimeout is returned if the query doesn't complete in time.
	Probe(ctx context.Context, query QueryFunc) (string, error)
	// Close disposes all resources held by the prober.
	Close() error
}

// maxWaitMillis stays below the value the wait functions treat as an infinite timeout.
const maxWaitMillis = math.MaxUint32 - 1

// waitMillis returns the number of milliseconds the caller may wait for the query, bounded
// by the timeout and the context deadline. Partial milliseconds round up. It returns false
// if the deadline has already elapsed.
func waitMillis(ctx context.Context, timeout time.Duration) (uint32, bool) {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, false
	}
	ms := (timeout + time.Millisecond - 1) / time.Millisecond
	if ms > maxWaitMillis {
		return maxWaitMillis, true
	}
	return uint32(ms), true
}

type result struct {
	name string
	err  error
}

type prober struct {
	timeout time.Duration
}

// NewProber returns the prober that executes the query in a separate goroutine. If the query
// doesn't return within the timeout, the goroutine is abandoned. It keeps blocking on its
// private state until the query returns.
func NewProber(timeout time.Duration) Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &prober{timeout: timeout}
}

func (p *prober) Probe(ctx context.Context, query QueryFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		name, err := query()
		ch <- result{name: name, err: err}
	}()

	select {
	case r := <-ch:
		return r.name, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			probeTimeouts.Add(1)
			return "", ErrProbeTimeout
		}
		return "", ctx.Err()
	}
}

func (p *prober) Close() error { return nil }
