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

package version

import (
	"fmt"
	"io"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	semver "github.com/hashicorp/go-version"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Version carries the release triple together with the commit and the
// build date stamped by the linker.
type Version struct {
	Major  int64
	Minor  int64
	Patch  int64
	Commit string
	Date   string
}

var versionRegexp = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)

var version string

// Set initializes the version string as global variable.
func Set(v string) { version = v }

// Get returns the version string.
func Get() string {
	if IsDev() {
		return "dev"
	}
	return version
}

// IsDev determines if this is a dev version.
func IsDev() bool { return version == "0.0.0" || version == "" }

// Sem returns the parsed semantic version or nil for dev builds.
func Sem() *semver.Version {
	if IsDev() {
		return nil
	}
	sem, err := semver.NewSemver(version)
	if err != nil {
		return nil
	}
	return sem
}

// AtLeast reports whether the running build is newer or equal than the
// given constraint. Dev builds satisfy every constraint.
func AtLeast(v string) (bool, error) {
	c, err := semver.NewConstraint(">= " + v)
	if err != nil {
		return false, err
	}
	sem := Sem()
	if sem == nil {
		return true, nil
	}
	return c.Check(sem), nil
}

// ProductToken returns a tag to be poked in User Agent headers.
func ProductToken() string { return fmt.Sprintf("objexp/%s", Get()) }

// New parses the version string and returns the version instance.
func New(version, commit, date string) (Version, error) {
	if version == "" {
		return Version{Commit: commit, Date: date}, nil
	}

	toks := versionRegexp.FindStringSubmatch(version)
	if len(toks) == 0 {
		return Version{}, fmt.Errorf("invalid semver release: %s", version)
	}

	parts := strings.Split(toks[1], ".")
	major, _ := strconv.ParseInt(parts[0], 10, 64)
	minor, _ := strconv.ParseInt(parts[1], 10, 64)
	patch, _ := strconv.ParseInt(parts[2], 10, 64)

	return Version{
		Major:  major,
		Minor:  minor,
		Patch:  patch,
		Commit: commit,
		Date:   date,
	}, nil
}

func (v Version) String() string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return "dev"
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Render writes the version table to w.
func (v Version) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendRow(table.Row{"Version", v.String()})
	t.AppendRow(table.Row{"Commit", v.Commit})
	t.AppendRow(table.Row{"Build date", v.Date})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Go compiler", runtime.Version()})
	t.AppendRow(table.Row{"Platform", runtime.GOOS + "/" + runtime.GOARCH})

	t.Render()
}
