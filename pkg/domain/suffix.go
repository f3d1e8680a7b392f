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

// Package domain implements host-suffix matching and rewriting for URLs and
// bare hosts. Matching is anchored at host-label boundaries, so the suffix
// "old-domain.com" matches "www.old-domain.com" but never "notold-domain.com".
package domain

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔄 Suffix is an immutable old→new host-suffix substitution rule
type Suffix struct {
	Old string // Suffix to match (e.g. "old-domain.com")
	New string // Suffix to write in its place
}

// NewSuffix validates both sides and returns a Suffix. Each side must be a
// bare dot-separated host suffix: no scheme, path, port, or userinfo.
func NewSuffix(old, new string) (Suffix, error) {
	if err := validateSuffix(old); err != nil {
		return Suffix{}, errors.Errorf("old suffix %q: %w", old, err)
	}
	if err := validateSuffix(new); err != nil {
		return Suffix{}, errors.Errorf("new suffix %q: %w", new, err)
	}
	return Suffix{Old: old, New: new}, nil
}

func validateSuffix(s string) error {
	if s == "" {
		return errors.New("suffix is empty")
	}
	if strings.ContainsAny(s, ":/?#@ \t") {
		return errors.New("suffix must be a bare host suffix without scheme, port, or path")
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return errors.New("suffix must not start or end with a dot")
	}
	return nil
}

// Matches reports whether the host component of value ends with the old
// suffix at a label boundary. Comparison is case-insensitive. Unparsable
// values never match.
func (s Suffix) Matches(value string) bool {
	start, end := hostSpan(value)
	return s.matchHost(value[start:end])
}

// Rewrite replaces the matched trailing host suffix with the new suffix and
// reports whether a replacement happened. Every byte outside the matched
// suffix (scheme, subdomain labels, port, path, query, fragment) is preserved
// exactly; the new suffix is written verbatim. Non-matching values are
// returned unchanged.
func (s Suffix) Rewrite(value string) (string, bool) {
	start, end := hostSpan(value)
	host := value[start:end]
	if !s.matchHost(host) {
		return value, false
	}
	cut := len(host) - len(s.Old)
	return value[:start] + host[:cut] + s.New + value[end:], true
}

// matchHost checks the label-boundary anchored suffix match against a host.
// A leading dot (cookie domain form, ".old-domain.com") counts as a boundary.
func (s Suffix) matchHost(host string) bool {
	if host == "" || len(host) < len(s.Old) {
		return false
	}
	lh := strings.ToLower(host)
	lo := strings.ToLower(s.Old)
	if lh == lo {
		return true
	}
	return strings.HasSuffix(lh, "."+lo)
}

// hostSpan locates the host component of value without requiring it to be a
// well-formed URL. It accepts bare hosts, cookie domains with a leading dot,
// and full URLs with scheme, userinfo, port, path, query, or fragment. On
// garbage input it still returns a span; the suffix match then simply fails.
func hostSpan(value string) (int, int) {
	start := 0
	if i := strings.Index(value, "://"); i >= 0 {
		start = i + len("://")
	}
	rest := value[start:]

	// Authority ends at the first path, query, or fragment delimiter.
	end := len(rest)
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		end = i
	}
	authority := rest[:end]

	// Skip userinfo if present.
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		start += i + 1
		authority = authority[i+1:]
	}

	// Bracketed IPv6 literals carry no rewritable suffix; span the brackets
	// so the match fails cleanly.
	if strings.HasPrefix(authority, "[") {
		return start, start + len(authority)
	}

	// Drop the port.
	if i := strings.IndexByte(authority, ':'); i >= 0 {
		authority = authority[:i]
	}

	return start, start + len(authority)
}
