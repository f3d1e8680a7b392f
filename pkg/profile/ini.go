package profile

import (
	"bufio"
	"io"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// iniSection is one [Section] block of profiles.ini.
type iniSection struct {
	name   string
	values map[string]string
}

func (s iniSection) get(key string) string {
	return s.values[key]
}

// parseINI reads the minimal INI dialect of profiles.ini: [Section] headers,
// key=value lines, and #/; comments. Unknown constructs are skipped rather
// than rejected, matching how the browser itself treats the file.
func parseINI(r io.Reader) ([]iniSection, error) {
	var sections []iniSection
	var current *iniSection

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			sections = append(sections, iniSection{
				name:   line[1 : len(line)-1],
				values: map[string]string{},
			})
			current = &sections[len(sections)-1]
		default:
			key, value, found := strings.Cut(line, "=")
			if !found || current == nil {
				continue
			}
			current.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading profiles.ini: %w", err)
	}
	return sections, nil
}

func loadProfilesINI(path string) ([]iniSection, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("profiles.ini not found at %s", path)
		}
		return nil, errors.Errorf("opening profiles.ini: %w", err)
	}
	defer f.Close()
	return parseINI(f)
}
