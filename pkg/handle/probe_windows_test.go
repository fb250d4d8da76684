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
	"testing"
	"time"

	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/rabbitstack/objexp/pkg/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func createPipe(name string) (windows.Handle, error) {
	pipeName, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return windows.InvalidHandle, err
	}
	return windows.CreateNamedPipe(pipeName, windows.PIPE_ACCESS_DUPLEX, windows.PIPE_TYPE_BYTE|windows.PIPE_READMODE_BYTE|windows.PIPE_WAIT, windows.PIPE_UNLIMITED_INSTANCES, 4096, 4096, 0, nil)
}

func TestThreadProber(t *testing.T) {
	pipe, err := createPipe(`\\.\pipe\objexp-timeout`)
	require.NoError(t, err)
	defer windows.CloseHandle(pipe)

	p, err := NewThreadProber(150 * time.Millisecond)
	require.NoError(t, err)
	defer p.Close()

	name, err := p.Probe(context.Background(), func() (string, error) {
		buf, err := record.Query(record.NameBufferSize, func(b []byte) error { return sys.QueryObjectName(pipe, b) })
		if err != nil {
			return "", err
		}
		return record.DecodeObjectName(buf)
	})
	require.NoError(t, err)
	assert.Equal(t, `\Device\NamedPipe\objexp-timeout`, name)
}

func TestThreadProberTimeout(t *testing.T) {
	p, err := NewThreadProber(DefaultProbeTimeout)
	require.NoError(t, err)
	defer p.Close()

	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	require.NoError(t, err)
	defer windows.CloseHandle(ev)

	start := time.Now()
	_, err = p.Probe(context.Background(), func() (string, error) {
		_, _ = windows.WaitForSingleObject(ev, windows.INFINITE)
		return "", nil
	})
	require.ErrorIs(t, err, ErrProbeTimeout)
	assert.Less(t, time.Since(start), time.Second)

	// the thread is recreated on the next probe
	name, err := p.Probe(context.Background(), func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", name)
}

func TestThreadQueryElapsedDeadline(t *testing.T) {
	p, err := NewThreadProber(time.Minute)
	require.NoError(t, err)
	defer p.Close()

	// the deadline elapses after the context is first checked
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(time.Millisecond))
	defer cancel()
	time.Sleep(5 * time.Millisecond)
	ctx = withoutErr{ctx}

	ran := false
	start := time.Now()
	_, err = p.Probe(ctx, func() (string, error) {
		ran = true
		return "ok", nil
	})
	require.ErrorIs(t, err, ErrProbeTimeout)
	assert.False(t, ran)
	assert.Less(t, time.Since(start), time.Second)
}

func TestThreadQueryWaitFailure(t *testing.T) {
	pr, err := NewThreadProber(time.Second)
	require.NoError(t, err)
	p := pr.(*threadProber)

	name, err := p.Probe(context.Background(), func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.Equal(t, "ok", name)

	// the query thread can't signal completion and the wait on the done event fails
	require.NoError(t, windows.CloseHandle(p.done))
	name, err = p.Probe(context.Background(), func() (string, error) { return "ok", nil })
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProbeTimeout)
	assert.Empty(t, name)

	p.done, err = windows.CreateEvent(nil, 0, 0, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

// withoutErr hides the expired state of the context so only its deadline is observed.
type withoutErr struct{ context.Context }

func (withoutErr) Err() error { return nil }
