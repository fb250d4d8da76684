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

package ps

import (
	"github.com/stretchr/testify/mock"
)

// ListerMock is the process lister mock used in tests.
type ListerMock struct {
	mock.Mock
}

// Processes method
func (l *ListerMock) Processes() ([]ProcessInfo, error) {
	args := l.Called()
	procs, _ := args.Get(0).([]ProcessInfo)
	return procs, args.Error(1)
}
