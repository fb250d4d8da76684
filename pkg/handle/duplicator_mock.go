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

package handle

import (
	"github.com/stretchr/testify/mock"
)

// DuplicatorMock is the handle duplicator mock used in tests.
type DuplicatorMock struct {
	mock.Mock
}

// Duplicate method
func (d *DuplicatorMock) Duplicate(value uint64, pid uint32, access uint32) (uintptr, error) {
	args := d.Called(value, pid, access)
	return args.Get(0).(uintptr), args.Error(1)
}

// Close method
func (d *DuplicatorMock) Close(h uintptr) error {
	args := d.Called(h)
	return args.Error(0)
}
