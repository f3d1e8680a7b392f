package store

import (
	"context"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ⚙️ PrefsAdapter rewrites string-valued user_pref lines in prefs.js. Only
// the quoted value of a matched line changes; pref names, non-string prefs,
// comments, blank lines, and line ordering are preserved byte-for-byte.
type PrefsAdapter struct {
	path string
}

func NewPrefs(path string) *PrefsAdapter {
	return &PrefsAdapter{path: path}
}

func (a *PrefsAdapter) Name() string { return "prefs" }
func (a *PrefsAdapter) Path() string { return a.path }

// prefLineRe captures the name and the string value of one user_pref line.
var prefLineRe = regexp.MustCompile(`^user_pref\("((?:[^"\\]|\\.)*)",\s*"((?:[^"\\]|\\.)*)"\);`)

func (a *PrefsAdapter) Enumerate(ctx context.Context) ([]Candidate, error) {
	data, _, err := readStoreFile(a.path)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for i, line := range strings.Split(string(data), "\n") {
		m := prefLineRe.FindStringSubmatch(line)
		if m == nil || m[2] == "" {
			continue
		}
		out = append(out, Candidate{
			Loc:   Location{Table: "user_pref", Column: m[1], Row: int64(i + 1)},
			Value: m[2],
		})
	}
	return out, nil
}

func (a *PrefsAdapter) Apply(ctx context.Context, changes []Change) error {
	data, mode, err := readStoreFile(a.path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	for _, ch := range changes {
		idx := int(ch.Loc.Row) - 1
		if idx < 0 || idx >= len(lines) {
			return errors.Errorf("%w: pref line %d out of range", ErrMalformedStore, ch.Loc.Row)
		}
		m := prefLineRe.FindStringSubmatchIndex(lines[idx])
		if m == nil {
			return errors.Errorf("%w: line %d is not a user_pref entry", ErrMalformedStore, ch.Loc.Row)
		}
		// Submatch 2 spans the quoted value.
		start, end := m[4], m[5]
		if lines[idx][start:end] != ch.Old {
			return errors.Errorf("%w: pref %s no longer matches the plan", ErrMalformedStore, ch.Loc)
		}
		lines[idx] = lines[idx][:start] + ch.New + lines[idx][end:]
	}

	if err := writeFileAtomic(a.path, []byte(strings.Join(lines, "\n")), mode); err != nil {
		return errors.Errorf("replacing prefs store: %w", err)
	}
	return nil
}

func (a *PrefsAdapter) Count(ctx context.Context) (int, error) {
	data, _, err := readStoreFile(a.path)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		if prefLineRe.MatchString(line) {
			n++
		}
	}
	return n, nil
}
