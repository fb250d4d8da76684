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

package record

import (
	"errors"
	"expvar"
	"fmt"
	"math"

	"github.com/rabbitstack/objexp/pkg/sys"
)

const (
	// ObjectsBufferSize is the initial size of the buffer for the object types and instances query.
	ObjectsBufferSize uint32 = 1 << 26
	// TypesBufferSize is the initial size of the buffer for the object types query.
	TypesBufferSize uint32 = 1 << 17
	// HandlesBufferSize is the initial size of the buffer for the system handle table query.
	HandlesBufferSize uint32 = 1 << 25
	// NameBufferSize is the initial size of the buffer for the object name query.
	NameBufferSize uint32 = 2048
)

var bufferGrows = expvar.NewInt("record.buffer.grows")

// maxBufferSize bounds the buffer growth. The query functions take the buffer length as
// a 32-bit value, so the buffer can't grow past it.
var maxBufferSize uint32 = math.MaxUint32

// FillFunc fills the buffer with the result of the boundary query. It returns
// sys.ErrBufferTooSmall if the buffer can't hold the result.
type FillFunc func(b []byte) error

// Query runs the fill function against a buffer of the specified size. Every time the
// fill function reports the buffer is too small, the size is doubled and the query is
// retried. Any other error terminates the query, and so does the size that can't be
// doubled without exceeding the 32-bit length.
func Query(size uint32, fill FillFunc) (*Buffer, error) {
	if size == 0 {
		size = PtrSize
	}
	for {
		b := make([]byte, size)
		err := fill(b)
		switch {
		case err == nil:
			return NewBuffer(b), nil
		case errors.Is(err, sys.ErrBufferTooSmall):
			if size > maxBufferSize/2 {
				return nil, fmt.Errorf("unable to grow the buffer beyond %d bytes: %w", size, err)
			}
			size <<= 1
			bufferGrows.Add(1)
		default:
			return nil, err
		}
	}
}
