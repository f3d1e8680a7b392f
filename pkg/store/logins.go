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

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔑 LoginsAdapter rewrites the origin URL fields of logins.json: hostname,
// formSubmitURL, and httpRealm (the realm only when it is itself a URL). The
// encrypted username/password payloads are never touched. Because secrets are
// at stake, the adapter refuses to apply anything when the file's shape is
// not the expected {"logins": [...]} document.
type LoginsAdapter struct {
	path string
}

func NewLogins(path string) *LoginsAdapter {
	return &LoginsAdapter{path: path}
}

func (a *LoginsAdapter) Name() string { return "logins" }
func (a *LoginsAdapter) Path() string { return a.path }

// loginFields are the URL-bearing fields of a login entry, in enumeration order.
var loginFields = []string{"hostname", "formSubmitURL", "httpRealm"}

type loginsDoc struct {
	top     map[string]json.RawMessage
	entries []json.RawMessage
	decoded []map[string]any
	mode    os.FileMode
}

func (a *LoginsAdapter) parse() (*loginsDoc, error) {
	data, mode, err := readStoreFile(a.path)
	if err != nil {
		return nil, err
	}

	doc := &loginsDoc{mode: mode}
	if err := json.Unmarshal(data, &doc.top); err != nil {
		return nil, errors.Errorf("%w: not a JSON object: %v", ErrMalformedStore, err)
	}
	raw, ok := doc.top["logins"]
	if !ok {
		return nil, errors.Errorf("%w: missing \"logins\" array", ErrMalformedStore)
	}
	if err := json.Unmarshal(raw, &doc.entries); err != nil {
		return nil, errors.Errorf("%w: \"logins\" is not an array: %v", ErrMalformedStore, err)
	}

	doc.decoded = make([]map[string]any, len(doc.entries))
	for i, entry := range doc.entries {
		dec := json.NewDecoder(bytes.NewReader(entry))
		dec.UseNumber() // keep numeric fields byte-stable through re-encoding
		if err := dec.Decode(&doc.decoded[i]); err != nil || doc.decoded[i] == nil {
			return nil, errors.Errorf("%w: login entry %d is not an object", ErrMalformedStore, i)
		}
	}
	return doc, nil
}

func (a *LoginsAdapter) Enumerate(ctx context.Context) ([]Candidate, error) {
	doc, err := a.parse()
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for i, entry := range doc.decoded {
		for _, field := range loginFields {
			value, ok := entry[field].(string)
			if !ok || value == "" {
				continue
			}
			// httpRealm is free text unless the site stored a URL there.
			if field == "httpRealm" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
				continue
			}
			out = append(out, Candidate{
				Loc:   Location{Table: "logins", Column: field, Row: int64(i)},
				Value: value,
			})
		}
	}
	return out, nil
}

func (a *LoginsAdapter) Apply(ctx context.Context, changes []Change) error {
	doc, err := a.parse()
	if err != nil {
		return err
	}

	// Validate the whole plan against the current contents before mutating
	// anything, then re-encode only the entries that actually change. Entries
	// without changes keep their original bytes.
	dirty := make(map[int64]bool)
	for _, ch := range changes {
		i := ch.Loc.Row
		if i < 0 || int(i) >= len(doc.decoded) {
			return errors.Errorf("%w: login entry %d out of range", ErrMalformedStore, i)
		}
		current, _ := doc.decoded[i][ch.Loc.Column].(string)
		if current != ch.Old {
			return errors.Errorf("%w: field %s no longer matches the plan", ErrMalformedStore, ch.Loc)
		}
		doc.decoded[i][ch.Loc.Column] = ch.New
		dirty[i] = true
	}

	for i := range doc.entries {
		if !dirty[int64(i)] {
			continue
		}
		encoded, err := json.Marshal(doc.decoded[i])
		if err != nil {
			return errors.Errorf("encoding login entry %d: %w", i, err)
		}
		doc.entries[i] = encoded
	}

	entriesRaw, err := json.Marshal(doc.entries)
	if err != nil {
		return errors.Errorf("encoding logins array: %w", err)
	}
	doc.top["logins"] = entriesRaw

	compact, err := json.Marshal(doc.top)
	if err != nil {
		return errors.Errorf("encoding logins document: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return errors.Errorf("formatting logins document: %w", err)
	}
	pretty.WriteByte('\n')

	if err := writeFileAtomic(a.path, pretty.Bytes(), doc.mode); err != nil {
		return errors.Errorf("replacing logins store: %w", err)
	}
	return nil
}

func (a *LoginsAdapter) Count(ctx context.Context) (int, error) {
	doc, err := a.parse()
	if err != nil {
		return 0, err
	}
	return len(doc.entries), nil
}
