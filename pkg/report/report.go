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

// Package report aggregates per-store rewrite outcomes into a human-readable
// and machine-checkable summary. Results are append-only: once recorded, an
// outcome is never mutated.
package report

import (
	"sync"
	"time"

	"github.com/walteh/ffmigrate/pkg/store"
)

// 📊 Status is the terminal state of one store's plan/execute cycle
type Status int

const (
	StatusSkipped   Status = iota // store file not present for this profile
	StatusSimulated               // dry-run: plan rendered, nothing mutated
	StatusApplied                 // every change in the plan landed
	StatusFailed                  // store failed; left exactly as it was
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSimulated:
		return "simulated"
	case StatusApplied:
		return "applied"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 StoreResult is the outcome of one store
type StoreResult struct {
	Store      string         // role name (history, cookies, ...)
	Path       string         // on-disk location
	Status     Status         // terminal state
	Candidates int            // fields scanned
	Changes    []store.Change // before/after pairs, in plan order
	Err        error          // failure reason, when Status is StatusFailed
	Elapsed    time.Duration  // plan+execute time for this store
}

// 🗃️ Report accumulates one result per store
type Report struct {
	mu      sync.Mutex
	started time.Time
	results []StoreResult
}

func New() *Report {
	return &Report{started: time.Now()}
}

// Add records one store outcome. Results keep their append order, which is
// the engine's fixed store order.
func (r *Report) Add(res StoreResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns a copy of the recorded outcomes.
func (r *Report) Results() []StoreResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StoreResult, len(r.results))
	copy(out, r.results)
	return out
}

// OK reports whether every targeted store was skipped or succeeded.
func (r *Report) OK() bool {
	return len(r.FailedStores()) == 0
}

// FailedStores names the stores that failed, for exit diagnostics.
func (r *Report) FailedStores() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, res := range r.results {
		if res.Status == StatusFailed {
			out = append(out, res.Store)
		}
	}
	return out
}

// TotalCandidates sums scanned fields across stores.
func (r *Report) TotalCandidates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		n += res.Candidates
	}
	return n
}

// TotalChanges sums planned or applied changes across stores.
func (r *Report) TotalChanges() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		n += len(res.Changes)
	}
	return n
}

// Elapsed is the wall time since the report was opened.
func (r *Report) Elapsed() time.Duration {
	return time.Since(r.started)
}
