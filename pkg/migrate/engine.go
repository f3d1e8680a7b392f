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

package migrate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/pkg/backup"
	"github.com/walteh/ffmigrate/pkg/domain"
	"github.com/walteh/ffmigrate/pkg/profile"
	"github.com/walteh/ffmigrate/pkg/report"
	"github.com/walteh/ffmigrate/pkg/store"
)

// 🔧 Options configures one engine run
type Options struct {
	// DryRun renders every plan without mutating any store.
	DryRun bool

	// Stores restricts the run to the named roles; empty means all roles.
	Stores []profile.Role

	// SkipFileBackups disables the per-store .bak copy taken before a real
	// rewrite. Meant for tests; the CLI always keeps backups on.
	SkipFileBackups bool
}

// ErrBrowserRunning is returned before any store is touched when the profile
// is held open by a running browser.
var ErrBrowserRunning = errors.New("profile is in use; close the browser and retry")

// NewAdapter builds the format adapter for one store role.
func NewAdapter(role profile.Role, path string) store.Adapter {
	switch role {
	case profile.RoleHistory:
		return store.NewPlaces(path)
	case profile.RoleCookies:
		return store.NewCookies(path)
	case profile.RoleFormHistory:
		return store.NewFormHistory(path)
	case profile.RoleLogins:
		return store.NewLogins(path)
	default:
		return store.NewPrefs(path)
	}
}

// Run drives the rewrite over every targeted store of the profile, one store
// at a time in the fixed order history → cookies → form history → logins →
// prefs. A store failure is recorded and the run moves on to the next store;
// only a browser lock detected up front aborts the run before it starts.
func Run(ctx context.Context, prof *profile.Profile, sfx domain.Suffix, opts Options) (*report.Report, error) {
	logger := zerolog.Ctx(ctx)

	if !opts.DryRun && profile.Locked(prof.Dir) {
		return nil, errors.Errorf("%w: %s", ErrBrowserRunning, prof.Dir)
	}

	targets := opts.Stores
	if len(targets) == 0 {
		targets = profile.Roles()
	}

	rep := report.New()
	for _, role := range targets {
		path := prof.RolePath(role)
		started := time.Now()

		if !prof.HasRole(role) {
			rep.Add(report.StoreResult{
				Store:  string(role),
				Path:   path,
				Status: report.StatusSkipped,
			})
			continue
		}

		adapter := NewAdapter(role, path)
		res := runStore(ctx, adapter, sfx, opts)
		res.Elapsed = time.Since(started)
		rep.Add(res)

		if res.Status == report.StatusFailed {
			logger.Error().Err(res.Err).Str("store", res.Store).Msg("store failed, continuing with remaining stores")
		}
	}
	return rep, nil
}

// runStore takes one store through Scanned → Planned → terminal state.
func runStore(ctx context.Context, adapter store.Adapter, sfx domain.Suffix, opts Options) report.StoreResult {
	out := report.StoreResult{Store: adapter.Name(), Path: adapter.Path()}

	plan, err := Plan(ctx, adapter, sfx)
	if err != nil {
		if errors.Is(err, store.ErrNotPresent) {
			out.Status = report.StatusSkipped
			return out
		}
		out.Status = report.StatusFailed
		out.Err = err
		return out
	}
	out.Candidates = plan.Candidates
	out.Changes = plan.Changes

	// Keep a copy of the file before the first real mutation; a failed apply
	// already rolls back, the .bak guards against everything else.
	if !opts.DryRun && !opts.SkipFileBackups && len(plan.Changes) > 0 {
		if _, err := backup.FileBackup(adapter.Path()); err != nil {
			out.Status = report.StatusFailed
			out.Err = err
			return out
		}
	}

	res := Execute(ctx, adapter, plan, opts.DryRun)
	switch {
	case res.Err != nil:
		out.Status = report.StatusFailed
		out.Err = res.Err
	case opts.DryRun:
		out.Status = report.StatusSimulated
	default:
		out.Status = report.StatusApplied
	}
	return out
}
