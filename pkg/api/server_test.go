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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/handle/types"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/ps"
	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExplorer struct {
	gen      atomic.Uint64
	enumErr  error
	enumRuns atomic.Int32
}

func (e *fakeExplorer) Generation() uint64 { return e.gen.Load() }

func (e *fakeExplorer) Types() []objmgr.TypeInfoEx {
	return []objmgr.TypeInfoEx{
		{TypeRecord: record.TypeRecord{Name: "Mutant", Index: 17, TotalObjects: 3, TotalHandles: 5}},
		{TypeRecord: record.TypeRecord{Name: "Section", Index: 44, TotalObjects: 1, TotalHandles: 1}},
	}
}

func (e *fakeExplorer) Changes() []objmgr.Change {
	return []objmgr.Change{{TypeIndex: 17, TypeName: "Mutant", Kind: objmgr.TotalHandlesDelta, Delta: -2}}
}

func (e *fakeExplorer) TotalObjects() uint64 { return 4 }
func (e *fakeExplorer) TotalHandles() uint64 { return 6 }

func (e *fakeExplorer) Objects() []*objmgr.ObjectInfoEx {
	return []*objmgr.ObjectInfoEx{
		{Address: 0xffffa0010, TypeIndex: 17, HandleCount: 2, Name: `\BaseNamedObjects\Lock`, Handles: e.Handles()[:2]},
		{Address: 0xffffa0020, TypeIndex: 44, HandleCount: 1, DupFailure: handle.AccessDenied, Handles: e.Handles()[2:]},
	}
}

func (e *fakeExplorer) Handles() types.Handles {
	return types.Handles{
		{Value: 0x40, PID: 4, Object: 0xffffa0010, TypeIndex: 17},
		{Value: 0x44, PID: 812, Object: 0xffffa0010, TypeIndex: 17},
		{Value: 0x48, PID: 812, Object: 0xffffa0020, TypeIndex: 44},
	}
}

func (e *fakeExplorer) TypeName(index uint16) string {
	switch index {
	case 17:
		return "Mutant"
	case 44:
		return "Section"
	}
	return ""
}

func (e *fakeExplorer) Processes() []ps.ProcessInfo {
	return []ps.ProcessInfo{{PID: 4, Name: "System"}, {PID: 812, Name: "svchost.exe"}}
}

func (e *fakeExplorer) EnumHandlesAndObjects(ctx context.Context) error {
	e.enumRuns.Add(1)
	if e.enumErr != nil {
		return e.enumErr
	}
	e.gen.Add(1)
	return nil
}

func newTestServer(t *testing.T, exp Explorer) *httptest.Server {
	c := config.NewWithOpts(config.WithServe())
	c.MustViperize(&cobra.Command{})
	require.NoError(t, c.Init())
	c.API.RefreshInterval = time.Hour
	srv := httptest.NewServer(NewServer(c, exp).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, v interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestTypes(t *testing.T) {
	srv := newTestServer(t, &fakeExplorer{})

	var resp struct {
		TotalObjects uint64 `json:"total_objects"`
		TotalHandles uint64 `json:"total_handles"`
		Types        []struct {
			Name  string
			Index uint16
		} `json:"types"`
	}
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/types", &resp))
	assert.Equal(t, uint64(4), resp.TotalObjects)
	assert.Equal(t, uint64(6), resp.TotalHandles)
	require.Len(t, resp.Types, 2)
	assert.Equal(t, "Mutant", resp.Types[0].Name)
	assert.Equal(t, uint16(44), resp.Types[1].Index)

	var changes []map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/changes", &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, "TotalHandles", changes[0]["kind"])
	assert.Equal(t, float64(-2), changes[0]["delta"])
}

func TestObjects(t *testing.T) {
	srv := newTestServer(t, &fakeExplorer{})

	var tests = []struct {
		query string
		names []string
	}{
		{"", []string{"Mutant", "Section"}},
		{"?type=mutant", []string{"Mutant"}},
		{"?unresolved=true", []string{"Section"}},
		{"?type=Event", []string{}},
		{"?type=mu", []string{"Mutant"}},
		{"?type=SEC", []string{"Section"}},
		{"?type=sem", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var objects []struct {
				TypeName   string `json:"type_name"`
				DupFailure string `json:"dup_failure"`
			}
			require.Equal(t, http.StatusOK, get(t, srv.URL+"/objects"+tt.query, &objects))
			names := make([]string, 0)
			for _, o := range objects {
				names = append(names, o.TypeName)
				if o.TypeName == "Section" {
					assert.Equal(t, "access denied", o.DupFailure)
				}
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestHandlesByPID(t *testing.T) {
	srv := newTestServer(t, &fakeExplorer{})

	var handles []map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/handles?pid=812", &handles))
	assert.Len(t, handles, 2)

	require.Equal(t, http.StatusOK, get(t, srv.URL+"/handles", &handles))
	assert.Len(t, handles, 3)

	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/handles?pid=svchost", &handles))

	var procs []ps.ProcessInfo
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/processes", &procs))
	assert.Equal(t, "svchost.exe", procs[1].Name)
}

func TestRefreshThrottle(t *testing.T) {
	exp := &fakeExplorer{}
	srv := newTestServer(t, exp)

	resp, err := http.Get(srv.URL + "/refresh")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	var body map[string]uint64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(1), body["generation"])

	resp, err = http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), exp.enumRuns.Load())
}

func TestRefreshError(t *testing.T) {
	exp := &fakeExplorer{enumErr: errors.New("invariant breach: types count changed")}
	srv := newTestServer(t, exp)

	resp, err := http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestConfigAndVars(t *testing.T) {
	srv := newTestServer(t, &fakeExplorer{})

	var cfg map[string]string
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/config", &cfg))
	assert.Equal(t, "localhost:8484", cfg["api.transport"])

	var vars map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/debug/vars", &vars))
	assert.Contains(t, vars, "api.refresh.throttled")
}

func TestTransformPipePath(t *testing.T) {
	assert.Equal(t, `\\.\pipe\objexp`, transformPipePath("npipe:///objexp"))
	assert.Equal(t, `\\.\pipe\objexp`, transformPipePath(`\\.\pipe\objexp`))
	assert.True(t, IsPipe("npipe:///objexp"))
	assert.False(t, IsPipe("localhost:8484"))
}

func TestStartClose(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	c := config.NewWithOpts(config.WithServe())
	c.MustViperize(&cobra.Command{})
	require.NoError(t, c.Init())
	c.API.Transport = fmt.Sprintf("127.0.0.1:%d", port)

	s := NewServer(c, &fakeExplorer{})
	require.NoError(t, s.Start())
	assert.Equal(t, c.API.Transport, s.Addr())

	var changes []map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, "http://"+s.Addr()+"/changes", &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, "Mutant", changes[0]["type_name"])

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}
