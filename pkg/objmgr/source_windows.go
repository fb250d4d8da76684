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

package objmgr

import (
	"github.com/rabbitstack/objexp/pkg/handle"
	"github.com/rabbitstack/objexp/pkg/ps"
	"github.com/rabbitstack/objexp/pkg/sys"
	"golang.org/x/sys/windows"
)

type systemSource struct {
	handle.Duplicator
	ps.Lister
}

// NewSystemSource returns the source backed by the native system calls.
func NewSystemSource() Source {
	return systemSource{Duplicator: handle.NewDuplicator(), Lister: ps.NewLister()}
}

func (systemSource) QueryObjectTypes(b []byte) error { return sys.QueryObjectTypes(b) }

func (systemSource) QuerySystemObjects(b []byte) error {
	return sys.QuerySystemInformation(sys.SystemObjectInformationClass, b)
}

func (systemSource) QueryHandles(b []byte) error {
	return sys.QuerySystemInformation(sys.SystemExtendedHandleInformationClass, b)
}

func (systemSource) QueryObjectName(h uintptr, b []byte) error {
	return sys.QueryObjectName(windows.Handle(h), b)
}
