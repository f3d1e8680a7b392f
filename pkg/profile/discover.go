package profile

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultBaseDir returns the platform's Firefox application directory, the
// one holding profiles.ini.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Firefox"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		return filepath.Join(appData, "Mozilla", "Firefox"), nil
	default:
		return filepath.Join(home, ".mozilla", "firefox"), nil
	}
}

// Discover parses profiles.ini under baseDir and returns every profile
// section, whether or not its directory exists.
func Discover(ctx context.Context, baseDir string) ([]*Profile, error) {
	sections, err := loadProfilesINI(filepath.Join(baseDir, "profiles.ini"))
	if err != nil {
		return nil, err
	}

	var profiles []*Profile
	for _, s := range sections {
		if !strings.HasPrefix(strings.ToLower(s.name), "profile") {
			continue
		}
		dir := s.get("Path")
		if dir == "" {
			continue
		}
		// IsRelative defaults to 1 when absent.
		if s.get("IsRelative") != "0" {
			dir = filepath.Join(baseDir, dir)
		}
		profiles = append(profiles, &Profile{
			Name:    s.get("Name"),
			Dir:     dir,
			Default: s.get("Default") == "1",
		})
	}

	zerolog.Ctx(ctx).Debug().Int("profiles", len(profiles)).Str("base", baseDir).Msg("parsed profiles.ini")
	return profiles, nil
}

// Pick resolves the profile a command should operate on. An explicit path
// wins; a forced name matches the profile directory's ".<name>" suffix; with
// neither, the healthiest profile is chosen, preferring the declared default
// when it carries the main stores.
func Pick(ctx context.Context, baseDir, forcedName, forcedPath string) (*Profile, error) {
	if forcedPath != "" {
		abs, err := filepath.Abs(forcedPath)
		if err != nil {
			return nil, errors.Errorf("resolving profile path: %w", err)
		}
		p := &Profile{Name: filepath.Base(abs), Dir: abs}
		if !p.Exists() {
			return nil, errors.Errorf("profile path not found: %s", abs)
		}
		return p, nil
	}

	profiles, err := Discover(ctx, baseDir)
	if err != nil {
		return nil, err
	}

	if forcedName != "" {
		for _, p := range profiles {
			if strings.HasSuffix(filepath.Base(p.Dir), "."+forcedName) {
				return p, nil
			}
		}
		return nil, errors.Errorf("profile %q not found in profiles.ini", forcedName)
	}

	var existing []*Profile
	for _, p := range profiles {
		if p.Exists() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil, errors.New("could not determine a valid profile directory")
	}

	sort.SliceStable(existing, func(i, j int) bool {
		pi, ri := existing[i].score()
		pj, rj := existing[j].score()
		if pi != pj {
			return pi > pj
		}
		return ri > rj
	})

	// A declared default wins as long as it looks healthy.
	for _, p := range existing {
		if p.Default {
			if present, _ := p.score(); present >= 2 {
				zerolog.Ctx(ctx).Debug().Str("dir", p.Dir).Msg("using declared default profile")
				return p, nil
			}
		}
	}

	zerolog.Ctx(ctx).Debug().Str("dir", existing[0].Dir).Msg("using best-ranked profile")
	return existing[0], nil
}
