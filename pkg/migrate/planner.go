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

// Package migrate plans and executes domain-suffix rewrites across a
// profile's stores: enumerate candidates, filter through the matcher, apply
// each store's plan all-or-nothing (or just render it in dry-run mode).
package migrate

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/pkg/domain"
	"github.com/walteh/ffmigrate/pkg/store"
)

// Plan enumerates the adapter's candidates and builds the store's change
// list in enumeration order. Deterministic: the same store contents always
// produce the same plan. The candidate count is recorded even when nothing
// matches.
func Plan(ctx context.Context, a store.Adapter, sfx domain.Suffix) (*store.Plan, error) {
	candidates, err := a.Enumerate(ctx)
	if err != nil {
		return nil, errors.Errorf("enumerating %s: %w", a.Name(), err)
	}

	plan := &store.Plan{
		Store:      a.Name(),
		Path:       a.Path(),
		Candidates: len(candidates),
	}
	for _, c := range candidates {
		rewritten, matched := sfx.Rewrite(c.Value)
		if !matched || rewritten == c.Value {
			continue
		}
		plan.Changes = append(plan.Changes, store.Change{Loc: c.Loc, Old: c.Value, New: rewritten})
	}

	zerolog.Ctx(ctx).Debug().
		Str("store", a.Name()).
		Int("candidates", plan.Candidates).
		Int("changes", len(plan.Changes)).
		Msg("plan built")
	return plan, nil
}
