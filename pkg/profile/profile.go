// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package profile locates Firefox profile directories via profiles.ini and
// maps each profile's store roles to their on-disk files.
package profile

import (
	"os"
	"path/filepath"
)

// 🎭 Role names one rewritable store within a profile
type Role string

const (
	RoleHistory     Role = "history"
	RoleCookies     Role = "cookies"
	RoleFormHistory Role = "formhistory"
	RoleLogins      Role = "logins"
	RolePrefs       Role = "prefs"
)

// roleFiles maps each role to its file name inside the profile directory.
var roleFiles = map[Role]string{
	RoleHistory:     "places.sqlite",
	RoleCookies:     "cookies.sqlite",
	RoleFormHistory: "formhistory.sqlite",
	RoleLogins:      "logins.json",
	RolePrefs:       "prefs.js",
}

// Roles returns every role in the fixed rewrite order.
func Roles() []Role {
	return []Role{RoleHistory, RoleCookies, RoleFormHistory, RoleLogins, RolePrefs}
}

// 👤 Profile is one discovered profile directory
type Profile struct {
	Name    string // section name from profiles.ini, or the directory base name
	Dir     string // absolute profile directory
	Default bool   // Default=1 in profiles.ini
}

// RolePath returns the store file path for a role; the file may not exist.
func (p *Profile) RolePath(r Role) string {
	return filepath.Join(p.Dir, roleFiles[r])
}

// HasRole reports whether the role's store file exists for this profile.
func (p *Profile) HasRole(r Role) bool {
	_, err := os.Stat(p.RolePath(r))
	return err == nil
}

// Exists reports whether the profile directory itself exists.
func (p *Profile) Exists() bool {
	info, err := os.Stat(p.Dir)
	return err == nil && info.IsDir()
}

// score ranks profiles for automatic selection: store presence first, then
// the conventional default-release directory name.
func (p *Profile) score() (int, int) {
	present := 0
	for _, r := range []Role{RoleHistory, RolePrefs, RoleCookies} {
		if p.HasRole(r) {
			present++
		}
	}
	release := 0
	if filepath.Ext(p.Dir) == ".default-release" {
		release = 1
	}
	return present, release
}

// lockMarkers are the files Firefox leaves in a profile while it is running.
var lockMarkers = []string{"parent.lock", ".parentlock", "lock"}

// Locked reports whether a browser appears to hold the profile open. Marker
// files are checked with Lstat because the POSIX lock is a dangling symlink.
func Locked(dir string) bool {
	for _, marker := range lockMarkers {
		if _, err := os.Lstat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
