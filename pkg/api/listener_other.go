//go:build !windows

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

package api

import (
	"context"
	"errors"
	"net"
)

// ErrPipeUnsupported is returned when the named pipe transport is requested on a platform without named pipes.
var ErrPipeUnsupported = errors.New("named pipe transport is only available on Windows")

// DialPipe returns the dialer that always fails on platforms without named pipes.
func DialPipe(string) func(context.Context, string, string) (net.Conn, error) {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, ErrPipeUnsupported
	}
}

func makeListener(transport string) (net.Listener, error) {
	if IsPipe(transport) {
		return nil, ErrPipeUnsupported
	}
	return makeTCPListener(transport)
}
