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

// Package invariant reports violations of the assumptions the object manager makes about
// the layout and the stability of the data returned by the operating system. Builds tagged
// with objdebug panic on the first violation, while regular builds log the violation and
// hand an error back to the caller.
package invariant

import (
	"errors"
	"expvar"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ErrBreach is the error all invariant violations wrap.
var ErrBreach = errors.New("invariant breach")

var breaches = expvar.NewInt("invariant.breaches")

// Breach records the invariant violation described by the format and its arguments.
func Breach(format string, args ...any) error {
	err := fmt.Errorf("%w: %s", ErrBreach, fmt.Sprintf(format, args...))
	breaches.Add(1)
	if panicOnBreach {
		panic(err)
	}
	log.Error(err)
	return err
}

// Check returns a breach error if cond is false. Otherwise, it returns nil.
func Check(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return Breach(format, args...)
}

// Is determines if the error is an invariant breach.
func Is(err error) bool { return errors.Is(err, ErrBreach) }
