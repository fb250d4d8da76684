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

package objmgr

import (
	"time"

	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/record"
)

// DefaultProbeTypeIndex is the index of the type whose name queries may block on pending I/O.
const DefaultProbeTypeIndex uint16 = 37

type options struct {
	typesBufferSize   uint32
	objectsBufferSize uint32
	handlesBufferSize uint32
	probeTimeout      time.Duration
	probeTypeIndex    uint16
	dupAccess         uint32
	prober            handle.Prober
}

func defaultOptions() options {
	return options{
		typesBufferSize:   record.TypesBufferSize,
		objectsBufferSize: record.ObjectsBufferSize,
		handlesBufferSize: record.HandlesBufferSize,
		probeTimeout:      handle.DefaultProbeTimeout,
		probeTypeIndex:    DefaultProbeTypeIndex,
		dupAccess:         handle.QueryAccess,
	}
}

// Option configures the object manager.
type Option func(o *options)

// WithTypesBufferSize sets the initial size of the object types buffer.
func WithTypesBufferSize(size uint32) Option {
	return func(o *options) { o.typesBufferSize = size }
}

// WithObjectsBufferSize sets the initial size of the system objects buffer.
func WithObjectsBufferSize(size uint32) Option {
	return func(o *options) { o.objectsBufferSize = size }
}

// WithHandlesBufferSize sets the initial size of the handle table buffer.
func WithHandlesBufferSize(size uint32) Option {
	return func(o *options) { o.handlesBufferSize = size }
}

// WithProbeTimeout sets the wall-clock bound of the probed name queries.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *options) { o.probeTimeout = timeout }
}

// WithProbeTypeIndex sets the index of the type whose name queries are probed.
func WithProbeTypeIndex(index uint16) Option {
	return func(o *options) { o.probeTypeIndex = index }
}

// WithDupAccess sets the access requested when duplicating handles for the name query.
func WithDupAccess(access uint32) Option {
	return func(o *options) { o.dupAccess = access }
}

// WithProber overrides the prober running the bounded name queries.
func WithProber(prober handle.Prober) Option {
	return func(o *options) { o.prober = prober }
}
