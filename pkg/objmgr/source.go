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
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/ps"
)

// Source is the boundary to the operating system introspection calls. Each query
// fills the caller buffer and returns sys.ErrBufferTooSmall if the buffer can't
// hold the result.
type Source interface {
	// QueryObjectTypes fills the buffer with the object types information.
	QueryObjectTypes(b []byte) error
	// QuerySystemObjects fills the buffer with all object types and their live instances.
	QuerySystemObjects(b []byte) error
	// QueryHandles fills the buffer with the system handle table.
	QueryHandles(b []byte) error
	// QueryObjectName fills the buffer with the name of the object referenced by
	// the local handle. It may block indefinitely.
	QueryObjectName(h uintptr, b []byte) error

	handle.Duplicator
	ps.Lister
}
