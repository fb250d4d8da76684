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
	"expvar"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/handle/types"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/ps"
	"github.com/rabbitstack/objexp/pkg/util/version"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var refreshThrottled = expvar.NewInt("api.refresh.throttled")

// Explorer is the read side of the object manager the server exposes
// along with the enumeration trigger.
type Explorer interface {
	Generation() uint64
	Types() []objmgr.TypeInfoEx
	Changes() []objmgr.Change
	TotalObjects() uint64
	TotalHandles() uint64
	Objects() []*objmgr.ObjectInfoEx
	Handles() types.Handles
	TypeName(index uint16) string
	Processes() []ps.ProcessInfo
	EnumHandlesAndObjects(ctx context.Context) error
}

// Server exposes the published snapshots over HTTP.
type Server struct {
	c        *config.Config
	exp      Explorer
	limiter  *rate.Limiter
	srv      *http.Server
	listener net.Listener
}

// NewServer builds the server for the given configuration and explorer.
func NewServer(c *config.Config, exp Explorer) *Server {
	interval := c.API.RefreshInterval
	if interval <= 0 {
		interval = time.Second
	}
	s := &Server{
		c:       c,
		exp:     exp,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: c.API.Timeout,
		WriteTimeout:      c.API.Timeout + time.Minute,
	}
	return s
}

// Handler returns the request multiplexer with all endpoints registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/types", s.types)
	mux.HandleFunc("/changes", s.changes)
	mux.HandleFunc("/objects", s.objects)
	mux.HandleFunc("/handles", s.handles)
	mux.HandleFunc("/processes", s.processes)
	mux.HandleFunc("/refresh", s.refresh)
	mux.HandleFunc("/config", s.config)
	mux.Handle("/debug/vars", expvar.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/freemem", func(http.ResponseWriter, *http.Request) {
		debug.FreeOSMemory()
	})
	return mux
}

// Start binds the listener for the configured transport and serves in the background.
func (s *Server) Start() error {
	l, err := makeListener(s.c.API.Transport)
	if err != nil {
		return err
	}
	s.listener = l
	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("unable to bind the API server: %v", err)
		}
	}()
	log.Infof("API server listening on %s", s.c.API.Transport)
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type typesResponse struct {
	Generation   uint64              `json:"generation"`
	TotalObjects uint64              `json:"total_objects"`
	TotalHandles uint64              `json:"total_handles"`
	Types        []objmgr.TypeInfoEx `json:"types"`
}

type object struct {
	*objmgr.ObjectInfoEx
	TypeName   string `json:"type_name"`
	DupFailure string `json:"dup_failure,omitempty"`
}

func (s *Server) types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, typesResponse{
		Generation:   s.exp.Generation(),
		TotalObjects: s.exp.TotalObjects(),
		TotalHandles: s.exp.TotalHandles(),
		Types:        s.exp.Types(),
	})
}

func (s *Server) changes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.exp.Changes())
}

// objects serves the deduplicated objects. The type query parameter filters
// by the type name or its short alias and unresolved=true keeps only objects without the name.
func (s *Server) objects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	unresolved := q.Get("unresolved") == "true"

	objects := make([]object, 0)
	for _, o := range s.exp.Objects() {
		name := s.exp.TypeName(o.TypeIndex)
		if typ != "" && !handle.MatchType(name, typ) {
			continue
		}
		if unresolved && !o.Unresolved() {
			continue
		}
		obj := object{ObjectInfoEx: o, TypeName: name}
		if o.DupFailure != 0 {
			obj.DupFailure = o.DupFailure.String()
		}
		objects = append(objects, obj)
	}
	writeJSON(w, objects)
}

func (s *Server) handles(w http.ResponseWriter, r *http.Request) {
	handles := s.exp.Handles()
	p := r.URL.Query().Get("pid")
	if p == "" {
		writeJSON(w, handles)
		return
	}
	pid, err := strconv.ParseUint(p, 10, 32)
	if err != nil {
		http.Error(w, "invalid pid: "+p, http.StatusBadRequest)
		return
	}
	filtered := make(types.Handles, 0)
	for _, h := range handles {
		if h.PID == uint32(pid) {
			filtered = append(filtered, h)
		}
	}
	writeJSON(w, filtered)
}

func (s *Server) processes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.exp.Processes())
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow() {
		refreshThrottled.Add(1)
		http.Error(w, "refresh throttled", http.StatusTooManyRequests)
		return
	}
	ctx := r.Context()
	if s.c.API.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.c.API.Timeout)
		defer cancel()
	}
	if err := s.exp.EnumHandlesAndObjects(ctx); err != nil {
		log.Warnf("API refresh failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]uint64{"generation": s.exp.Generation()})
}

func (s *Server) config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.c.Flatten())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Server", version.ProductToken())
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("unable to encode API response: %v", err)
	}
}
