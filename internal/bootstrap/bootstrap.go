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

package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitstack/objexp/pkg/api"
	"github.com/rabbitstack/objexp/pkg/config"
	"github.com/rabbitstack/objexp/pkg/objmgr"
	"github.com/rabbitstack/objexp/pkg/util/version"
	log "github.com/sirupsen/logrus"
)

// ErrAlreadyRunning signals an objexp server process is already running in the system
var ErrAlreadyRunning = errors.New("an instance of objexp server is already running in the system")

// App ties together the configuration, the object manager bound
// to the live system and the optional API server.
type App struct {
	config  *config.Config
	mgr     *objmgr.Manager
	srv     *api.Server
	signals chan os.Signal
}

// Option enables changing the behaviour of the bootstrap application.
type Option func(*opts)

type opts struct {
	setDebugPrivilege bool
	installSignals    bool
	source            objmgr.Source
}

// WithSignals installs signal handlers.
func WithSignals() Option {
	return func(o *opts) {
		o.installSignals = true
	}
}

// WithDebugPrivilege injects the SeDebugPrivilege in the process access token.
func WithDebugPrivilege() Option {
	return func(o *opts) {
		o.setDebugPrivilege = true
	}
}

// WithSource overrides the system information source.
func WithSource(src objmgr.Source) Option {
	return func(o *opts) {
		o.source = src
	}
}

// NewApp constructs a new bootstrap application with the specified configuration
// and a list of options. The configuration is passed from individual command work
// functions.
func NewApp(cfg *config.Config, options ...Option) (*App, error) {
	if err := InitConfigAndLogger(cfg); err != nil {
		return nil, err
	}
	var opts opts
	for _, opt := range options {
		opt(&opts)
	}
	src := opts.source
	if src == nil {
		var err error
		src, err = newSource()
		if err != nil {
			return nil, err
		}
	}
	if opts.setDebugPrivilege {
		if err := setDebugPrivilege(); err != nil {
			log.Warnf("handles of protected processes won't be duplicated: %v", err)
		}
	}
	app := &App{
		config: cfg,
		mgr:    objmgr.New(src, cfg.Enum.Options()...),
	}
	if opts.installSignals {
		app.signals = make(chan os.Signal, 1)
		signal.Notify(app.signals, os.Interrupt, syscall.SIGTERM)
	}
	return app, nil
}

// Manager returns the object manager.
func (a *App) Manager() *objmgr.Manager { return a.mgr }

// Serve runs the first full enumeration and starts the API server.
func (a *App) Serve(ctx context.Context) error {
	if !isSingleInstance() {
		return ErrAlreadyRunning
	}
	log.Infof("bootstrapping with pid %d. Version: %s", os.Getpid(), version.Get())
	log.Debugf("configuration dump %v", a.config.Flatten())

	if err := a.mgr.EnumHandlesAndObjects(ctx); err != nil {
		return err
	}
	a.srv = api.NewServer(a.config, a.mgr)
	return a.srv.Start()
}

// Wait waits for the app to receive the termination signal or the context to be canceled.
func (a *App) Wait(ctx context.Context) {
	if a.signals == nil {
		<-ctx.Done()
		return
	}
	select {
	case <-a.signals:
	case <-ctx.Done():
	}
}

// Signals returns the channel that receives the termination signals.
func (a *App) Signals() <-chan os.Signal { return a.signals }

// Shutdown is responsible for tearing down everything gracefully.
func (a *App) Shutdown() error {
	errs := make([]error, 0)
	if a.signals != nil {
		signal.Stop(a.signals)
	}
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.srv.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.mgr.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
