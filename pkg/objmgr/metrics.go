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
	"expvar"
)

var (
	// cycles counts the enumerations per kind (types, objects, handles)
	cycles = expvar.NewMap("objmgr.cycles")
	// changeCount is the number of changes observed on the last registry refresh
	changeCount = expvar.NewInt("objmgr.registry.changes")
	// unresolvedNames counts the deduplicated objects whose names couldn't be resolved
	unresolvedNames = expvar.NewInt("objmgr.name.unresolved")
	// publishedObjects is the number of objects in the last published handle-derived set
	publishedObjects = expvar.NewInt("objmgr.objects")
)
