// Copyright 2025 Google LLC
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

// Package config loads per-project analysis settings from a
// loopnest.toml file. Settings found in a file are merged over the
// defaults; keys absent from the file keep their default value.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/gx-org/loopnest/analyse"
	"github.com/gx-org/loopnest/ir"
)

// ConfigName is the file name looked up in a project directory.
const ConfigName = "loopnest.toml"

// Config are the settings driving the analysis passes.
type Config struct {
	Normalize NormalizeConfig `toml:"normalize"`
	Nesting   NestingConfig   `toml:"nesting"`
}

// NormalizeConfig controls loop bound normalization.
type NormalizeConfig struct {
	// InvalidateSource drops cached source text on rewritten
	// statements instead of carrying stale annotations.
	InvalidateSource bool `toml:"invalidate_source"`
}

// NestingConfig bounds the loop nests the analyses accept.
type NestingConfig struct {
	// MaxDepth is the deepest loop nest considered for polyhedron
	// construction. Zero means no limit.
	MaxDepth int `toml:"max_depth"`
}

// Default returns the configuration used in the absence of a project file.
func Default() Config {
	return Config{
		Normalize: NormalizeConfig{InvalidateSource: true},
		Nesting:   NestingConfig{MaxDepth: 0},
	}
}

// Options returns the rewriting options for the normalization pass.
func (c Config) Options() analyse.Options {
	return analyse.Options{InvalidateSource: c.Normalize.InvalidateSource}
}

// CheckDepth verifies that a subtree stays within the configured loop
// nesting limit.
func (c Config) CheckDepth(root ir.Node) error {
	if c.Nesting.MaxDepth == 0 {
		return nil
	}
	if d := analyse.NestDepth(root); d > c.Nesting.MaxDepth {
		return errors.Errorf("loop nest depth %d exceeds limit of %d", d, c.Nesting.MaxDepth)
	}
	return nil
}

// Load reads a configuration file and merges it over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	var file Config
	meta, err := toml.DecodeFile(path, &file)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot load %s", path)
	}
	if meta.IsDefined("normalize", "invalidate_source") {
		cfg.Normalize.InvalidateSource = file.Normalize.InvalidateSource
	}
	if meta.IsDefined("nesting", "max_depth") {
		cfg.Nesting.MaxDepth = file.Nesting.MaxDepth
	}
	return cfg, nil
}
