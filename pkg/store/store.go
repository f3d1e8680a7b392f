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

// Package store provides one format adapter per Firefox profile store
// (places.sqlite, cookies.sqlite, formhistory.sqlite, logins.json, prefs.js).
// Each adapter knows how to enumerate URL/host-bearing fields in its format
// and how to write a set of changes back all-or-nothing.
package store

import (
	"context"
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotPresent means the store's file does not exist for this profile.
	// Recoverable: the store is skipped, not failed.
	ErrNotPresent = errors.New("store file not present")

	// ErrMalformedStore means the store's contents don't match the expected
	// structural shape. The store is failed without mutation.
	ErrMalformedStore = errors.New("store contents do not match expected shape")

	// ErrLocked means the underlying file is held by another process,
	// usually a running browser.
	ErrLocked = errors.New("store is locked by another process")
)

// 📍 Location identifies one rewritable field within a store
type Location struct {
	Table  string // table name, or a logical section for file stores
	Column string // column or field name
	Row    int64  // row id, array index, or line number
}

func (l Location) String() string {
	return fmt.Sprintf("%s.%s#%d", l.Table, l.Column, l.Row)
}

// 🔍 Candidate is one enumerated field value that may contain the old domain
type Candidate struct {
	Loc   Location
	Value string
}

// 🔄 Change is one proposed or applied field mutation
type Change struct {
	Loc Location
	Old string
	New string
}

// 📋 Plan is the ordered set of changes for one store, plus how many
// candidates were scanned to produce it. Immutable once built.
type Plan struct {
	Store      string
	Path       string
	Candidates int
	Changes    []Change
}

// 🔌 Adapter is the per-format capability set. Enumerate and Apply each open
// and close the underlying file exactly once; no handle survives the call.
// Apply is all-or-nothing: on any failure the store is left exactly as it was.
type Adapter interface {
	// Name is the store's role name (history, cookies, formhistory, logins, prefs).
	Name() string

	// Path is the store's on-disk location.
	Path() string

	// Enumerate lists every URL/host-bearing field in the store.
	Enumerate(ctx context.Context) ([]Candidate, error)

	// Apply writes the changes back as a single unit of work.
	Apply(ctx context.Context, changes []Change) error

	// Count returns the store's total record count, for profile listings.
	Count(ctx context.Context) (int, error)
}
