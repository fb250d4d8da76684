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

package sys

import "errors"

// ErrBufferTooSmall is returned by the boundary queries when the caller-supplied buffer
// is not large enough to hold the result. Callers are expected to grow the buffer and retry.
var ErrBufferTooSmall = errors.New("buffer too small")

const (
	// SystemObjectInformationClass returns all object types along with the live instances of each type.
	SystemObjectInformationClass = 17
	// SystemExtendedHandleInformationClass returns every handle allocated in the system.
	SystemExtendedHandleInformationClass = 64
)

const (
	// ObjectNameInformationClass returns the object name information.
	ObjectNameInformationClass = iota + 1
	// ObjectTypeInformationClass returns the object type information.
	ObjectTypeInformationClass
	// ObjectTypesInformationClass returns the information for all object types.
	ObjectTypesInformationClass
)
