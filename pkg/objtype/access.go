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

package objtype

// AccessRight is the named access right.
type AccessRight struct {
	Name string `json:"name"`
	Mask uint32 `json:"mask"`
}

var standardRights = []AccessRight{
	{"DELETE", 0x00010000},
	{"READ_CONTROL", 0x00020000},
	{"WRITE_DAC", 0x00040000},
	{"WRITE_OWNER", 0x00080000},
	{"SYNCHRONIZE", 0x00100000},
}

type typeRights struct {
	specific []AccessRight
	all      AccessRight
	query    uint32
}

var rights = map[Kind]typeRights{
	Mutex: {
		specific: []AccessRight{
			{"MUTANT_QUERY_STATE", 0x0001},
		},
		all:   AccessRight{"MUTANT_ALL_ACCESS", 0x1f0001},
		query: 0x0001,
	},
	Process: {
		specific: []AccessRight{
			{"PROCESS_TERMINATE", 0x0001},
			{"PROCESS_CREATE_THREAD", 0x0002},
			{"PROCESS_SET_SESSIONID", 0x0004},
			{"PROCESS_VM_OPERATION", 0x0008},
			{"PROCESS_VM_READ", 0x0010},
			{"PROCESS_VM_WRITE", 0x0020},
			{"PROCESS_DUP_HANDLE", 0x0040},
			{"PROCESS_CREATE_PROCESS", 0x0080},
			{"PROCESS_SET_QUOTA", 0x0100},
			{"PROCESS_SET_INFORMATION", 0x0200},
			{"PROCESS_QUERY_INFORMATION", 0x0400},
			{"PROCESS_SUSPEND_RESUME", 0x0800},
			{"PROCESS_QUERY_LIMITED_INFORMATION", 0x1000},
			{"PROCESS_SET_LIMITED_INFORMATION", 0x2000},
		},
		all:   AccessRight{"PROCESS_ALL_ACCESS", 0x1fffff},
		query: 0x1000,
	},
	Thread: {
		specific: []AccessRight{
			{"THREAD_TERMINATE", 0x0001},
			{"THREAD_SUSPEND_RESUME", 0x0002},
			{"THREAD_ALERT", 0x0004},
			{"THREAD_GET_CONTEXT", 0x0008},
			{"THREAD_SET_CONTEXT", 0x0010},
			{"THREAD_SET_INFORMATION", 0x0020},
			{"THREAD_QUERY_INFORMATION", 0x0040},
			{"THREAD_SET_THREAD_TOKEN", 0x0080},
			{"THREAD_IMPERSONATE", 0x0100},
			{"THREAD_DIRECT_IMPERSONATION", 0x0200},
			{"THREAD_SET_LIMITED_INFORMATION", 0x0400},
			{"THREAD_QUERY_LIMITED_INFORMATION", 0x0800},
			{"THREAD_RESUME", 0x1000},
		},
		all:   AccessRight{"THREAD_ALL_ACCESS", 0x1fffff},
		query: 0x0800,
	},
	Semaphore: {
		specific: []AccessRight{
			{"SEMAPHORE_QUERY_STATE", 0x0001},
			{"SEMAPHORE_MODIFY_STATE", 0x0002},
		},
		all:   AccessRight{"SEMAPHORE_ALL_ACCESS", 0x1f0003},
		query: 0x0001,
	},
	Section: {
		specific: []AccessRight{
			{"SECTION_QUERY", 0x0001},
			{"SECTION_MAP_WRITE", 0x0002},
			{"SECTION_MAP_READ", 0x0004},
			{"SECTION_MAP_EXECUTE", 0x0008},
			{"SECTION_EXTEND_SIZE", 0x0010},
			{"SECTION_MAP_EXECUTE_EXPLICIT", 0x0020},
		},
		all:   AccessRight{"SECTION_ALL_ACCESS", 0xf001f},
		query: 0x0001,
	},
	Event: {
		specific: []AccessRight{
			{"EVENT_QUERY_STATE", 0x0001},
			{"EVENT_MODIFY_STATE", 0x0002},
		},
		all:   AccessRight{"EVENT_ALL_ACCESS", 0x1f0003},
		query: 0x0001,
	},
}
