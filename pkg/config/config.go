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

// Package config loads the optional .ffmigrate config file. CLI flags always
// override file values; the file is a convenience for repeated runs against
// the same migration.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is tried when no --config flag is given; a missing default
// file is not an error.
const DefaultPath = ".ffmigrate.yaml"

// 📚 Config is the complete file configuration
type Config struct {
	OldSuffix    string   `json:"old_suffix,omitempty" yaml:"old_suffix,omitempty"`
	NewSuffix    string   `json:"new_suffix,omitempty" yaml:"new_suffix,omitempty"`
	Profile      string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	ProfilePath  string   `json:"profile_path,omitempty" yaml:"profile_path,omitempty"`
	FirefoxDir   string   `json:"firefox_dir,omitempty" yaml:"firefox_dir,omitempty"`
	BackupDir    string   `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`
	BackupIgnore []string `json:"backup_ignore,omitempty" yaml:"backup_ignore,omitempty"`
}

// DefaultBackupIgnore keeps regenerable browser caches out of backups.
func DefaultBackupIgnore() []string {
	return []string{
		"cache2/**",
		"startupCache/**",
		"shader-cache/**",
		"thumbnails/**",
		"crashes/**",
	}
}

// Load loads a configuration file, choosing the format by extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// When path is empty, DefaultPath is tried and a missing file yields an
// empty config.
func Load(ctx context.Context, path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using defaults")
			return &Config{}, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		cfg, err = loadJSON(data)
	case ".yaml", ".yml":
		cfg, err = loadYAML(data)
	case ".hcl":
		cfg, err = loadHCL(data, path)
	default:
		return nil, errors.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loaded configuration")
	return cfg, nil
}

func loadJSON(data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON config: %w", err)
	}
	return &cfg, nil
}

func loadYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Errorf("parsing YAML config: %w", err)
	}
	return &cfg, nil
}

func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL config: %s", diags.Error())
	}

	// Expose the home directory so profile paths can be written portably.
	home, _ := os.UserHomeDir()
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(home),
		},
	}

	type hclConfig struct {
		OldSuffix    string   `hcl:"old_suffix,optional"`
		NewSuffix    string   `hcl:"new_suffix,optional"`
		Profile      string   `hcl:"profile,optional"`
		ProfilePath  string   `hcl:"profile_path,optional"`
		FirefoxDir   string   `hcl:"firefox_dir,optional"`
		BackupDir    string   `hcl:"backup_dir,optional"`
		BackupIgnore []string `hcl:"backup_ignore,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL config: %s", diags.Error())
	}

	return &Config{
		OldSuffix:    hclCfg.OldSuffix,
		NewSuffix:    hclCfg.NewSuffix,
		Profile:      hclCfg.Profile,
		ProfilePath:  hclCfg.ProfilePath,
		FirefoxDir:   hclCfg.FirefoxDir,
		BackupDir:    hclCfg.BackupDir,
		BackupIgnore: hclCfg.BackupIgnore,
	}, nil
}
