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

// Package backup copies profile directories and individual store files aside
// before any rewrite touches them, and restores a profile from a prior copy.
package backup

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// copyWorkers bounds the parallel file copies of a profile backup.
const copyWorkers = 4

// 📦 Summary describes a finished copy
type Summary struct {
	Files int
	Bytes int64
}

// Run copies the profile directory srcDir into a timestamped directory under
// destRoot and returns its path plus a size summary. The destination must not
// already exist. Paths matching an ignore glob (relative to srcDir) are
// skipped, which keeps browser caches out of backups.
func Run(ctx context.Context, srcDir, destRoot string, ignore []string) (string, Summary, error) {
	if err := os.MkdirAll(destRoot, 0755); err != nil {
		return "", Summary{}, errors.Errorf("creating backup root: %w", err)
	}

	dest := filepath.Join(destRoot, fmt.Sprintf("%s-backup-%s", filepath.Base(srcDir), timestamp()))
	if _, err := os.Stat(dest); err == nil {
		return "", Summary{}, errors.Errorf("destination already exists: %s", dest)
	}

	zerolog.Ctx(ctx).Debug().Str("from", srcDir).Str("to", dest).Msg("copying profile directory")
	if err := copyTree(ctx, srcDir, dest, ignore); err != nil {
		return "", Summary{}, errors.Errorf("copying profile: %w", err)
	}

	sum, err := Summarize(dest)
	if err != nil {
		return "", Summary{}, errors.Errorf("summarizing backup: %w", err)
	}
	return dest, sum, nil
}

// Restore replaces the contents of profileDir with the backup at srcDir. A
// pre-restore copy of the current profile is taken first, next to the profile
// directory; its path is returned so the user can roll the restore back.
func Restore(ctx context.Context, profileDir, srcDir string) (string, error) {
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return "", errors.Errorf("backup path not found or not a directory: %s", srcDir)
	}

	preRestore := filepath.Join(filepath.Dir(profileDir),
		fmt.Sprintf("%s-pre-restore-%s", filepath.Base(profileDir), timestamp()))
	zerolog.Ctx(ctx).Debug().Str("to", preRestore).Msg("creating pre-restore copy")
	if err := copyTree(ctx, profileDir, preRestore, nil); err != nil {
		return "", errors.Errorf("creating pre-restore copy: %w", err)
	}

	entries, err := os.ReadDir(profileDir)
	if err != nil {
		return "", errors.Errorf("reading profile directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(profileDir, entry.Name())); err != nil {
			return "", errors.Errorf("clearing profile contents: %w", err)
		}
	}

	if err := copyTree(ctx, srcDir, profileDir, nil); err != nil {
		return "", errors.Errorf("restoring profile: %w", err)
	}
	return preRestore, nil
}

// FileBackup copies one store file to a timestamped sibling before a rewrite
// mutates it, and returns the copy's path.
func FileBackup(path string) (string, error) {
	backupPath := fmt.Sprintf("%s.pre_migration_%s.bak", path, timestamp())
	if err := copyFile(path, backupPath); err != nil {
		return "", errors.Errorf("backing up %s: %w", filepath.Base(path), err)
	}
	return backupPath, nil
}

// Summarize walks dir counting regular files and their total size.
func Summarize(dir string) (Summary, error) {
	var sum Summary
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil // file vanished mid-walk
		}
		sum.Files++
		sum.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return Summary{}, errors.Errorf("walking %s: %w", dir, err)
	}
	return sum, nil
}

// HumanSize renders a byte count as B/KB/MB/GB/TB.
func HumanSize(n int64) string {
	s := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if s < 1024.0 {
			return fmt.Sprintf("%.1f %s", s, unit)
		}
		s /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", s)
}

func timestamp() string {
	return time.Now().Format("20060102-150405")
}

// copyTree copies src into dst (which must not exist yet unless restoring
// into a cleared directory). Directories are created up front; file contents
// are copied on a bounded worker pool.
func copyTree(ctx context.Context, src, dst string, ignore []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(copyWorkers)

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, 0755)
		}

		skip, err := matchesAny(ignore, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if skip {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			// Lock symlinks and sockets have no business in a backup.
			return nil
		}

		g.Go(func() error {
			return copyFile(path, target)
		})
		return nil
	})
	if err != nil {
		g.Wait()
		return err
	}
	return g.Wait()
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("stating source file: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}
	return nil
}

func matchesAny(patterns []string, rel string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, errors.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
