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

package sys

import (
	"golang.org/x/sys/windows"
	"unsafe"
)

// QueryObjectTypes fills the buffer with the object types information block.
func QueryObjectTypes(b []byte) error {
	if len(b) == 0 {
		return ErrBufferTooSmall
	}
	return status(NtQueryObject(0, ObjectTypesInformationClass, unsafe.Pointer(&b[0]), uint32(len(b)), nil))
}

// QueryObjectName fills the buffer with the name information of the object referenced by
// the handle. This call may block indefinitely if the object is a file with pending
// synchronous I/O.
func QueryObjectName(h windows.Handle, b []byte) error {
	if len(b) == 0 {
		return ErrBufferTooSmall
	}
	return status(NtQueryObject(h, ObjectNameInformationClass, unsafe.Pointer(&b[0]), uint32(len(b)), nil))
}

// QuerySystemInformation fills the buffer with the requested system information class.
func QuerySystemInformation(class int32, b []byte) error {
	if len(b) == 0 {
		return ErrBufferTooSmall
	}
	return status(windows.NtQuerySystemInformation(class, unsafe.Pointer(&b[0]), uint32(len(b)), nil))
}

// status folds all the size related status codes into ErrBufferTooSmall.
func status(err error) error {
	if err == windows.STATUS_INFO_LENGTH_MISMATCH || err == windows.STATUS_BUFFER_TOO_SMALL || err == windows.STATUS_BUFFER_OVERFLOW {
		return ErrBufferTooSmall
	}
	return err
}
