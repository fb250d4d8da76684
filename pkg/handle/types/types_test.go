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

package types

import (
	"testing"

	"github.com/rabbitstack/objexp/pkg/record"
	"github.com/stretchr/testify/assert"
)

func TestHandles(t *testing.T) {
	handles := Handles{
		FromRecord(record.HandleRecord{Object: 0xffffa50c4a2b1e70, PID: 1044, Value: 0x1c4, Access: 0x1f0003, TypeIndex: 16}),
		{Value: 0x2a8, Object: 0xffffa50c4a2b1e70, PID: 672, TypeIndex: 16},
		{Value: 0x30, Object: 0xffffa50c4a2b1e70, PID: 1044, TypeIndex: 16},
	}
	assert.Equal(t, uint32(0x1f0003), handles[0].Access)
	assert.Equal(t, []uint32{1044, 672}, handles.PIDs())
	assert.Equal(t, "Value: 0x1c4, Access: 0x1f0003, Object: 0xffffa50c4a2b1e70, PID: 1044, Type: 16", handles[0].String())
	assert.Contains(t, handles.String(), " | Value: 0x2a8")
}
