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

package rest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/types", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.UserAgent(), "objexp/"))
		w.Write([]byte(r.URL.RawQuery))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := Get(WithURI("types"), WithQuery("type=Mutant"), WithTransport(strings.TrimPrefix(srv.URL, "http://")))
	require.NoError(t, err)
	assert.Equal(t, "type=Mutant", string(resp))
}

func TestPostStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		http.Error(w, "refresh throttled", http.StatusTooManyRequests)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := Post(WithURI("refresh"), WithTransport(strings.TrimPrefix(srv.URL, "http://")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh throttled")
}

func TestNoTransport(t *testing.T) {
	_, err := Get(WithURI("types"))
	require.Error(t, err)
}

func TestGetRetry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/vars", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objmgr.objects": 12}`))
	})
	srv := httptest.NewUnstartedServer(mux)
	addr := srv.Listener.Addr().String()
	// refuse the first attempts until the server comes up
	require.NoError(t, srv.Listener.Close())

	started := make(chan error, 1)
	go func() {
		time.Sleep(300 * time.Millisecond)
		l, err := net.Listen("tcp", addr)
		if err == nil {
			srv.Listener = l
			srv.Start()
		}
		started <- err
	}()

	resp, err := Get(WithURI("debug/vars"), WithTransport(addr), WithRetry(10*time.Second))
	require.NoError(t, <-started)
	defer srv.Close()
	require.NoError(t, err)
	assert.Equal(t, `{"objmgr.objects": 12}`, string(resp))
}
