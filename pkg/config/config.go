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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/guardfix/pkg/catalog"
	"github.com/walteh/guardfix/pkg/inspect"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultTarget is walked when neither flags nor the file name a target
	DefaultTarget = "lib"

	// DefaultExtension selects files when walking directories
	DefaultExtension = ".dart"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🧩 RulesConfig names the vocabulary the rules are built from. Empty
// fields fall back to the setState/mounted defaults.
type RulesConfig struct {
	MutationCall     string   `json:"mutation_call,omitempty" yaml:"mutation_call,omitempty" hcl:"mutation_call,optional"`
	LivenessFlag     string   `json:"liveness_flag,omitempty" yaml:"liveness_flag,omitempty" hcl:"liveness_flag,optional"`
	OptionalAccessor string   `json:"optional_accessor,omitempty" yaml:"optional_accessor,omitempty" hcl:"optional_accessor,optional"`
	FailureType      string   `json:"failure_type,omitempty" yaml:"failure_type,omitempty" hcl:"failure_type,optional"`
	FailureMessage   string   `json:"failure_message,omitempty" yaml:"failure_message,omitempty" hcl:"failure_message,optional"`
	IndentUnit       string   `json:"indent_unit,omitempty" yaml:"indent_unit,omitempty" hcl:"indent_unit,optional"`
	Disable          []string `json:"disable,omitempty" yaml:"disable,omitempty" hcl:"disable,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Targets   []string     `json:"targets,omitempty" yaml:"targets,omitempty" hcl:"targets,optional"`
	Extension string       `json:"extension,omitempty" yaml:"extension,omitempty" hcl:"extension,optional"`
	Exclude   []string     `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	Jobs      int          `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`
	Window    int          `json:"window,omitempty" yaml:"window,omitempty" hcl:"window,optional"`
	Rules     *RulesConfig `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rules,block"`
}

// 🏭 Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	// defaults cannot fail validation
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Strs("targets", cfg.Targets).
		Str("extension", cfg.Extension).
		Int("jobs", cfg.Jobs).
		Int("window", cfg.Window).
		Msg("configuration loaded")

	return cfg, nil
}

// 🔍 Validate fills defaults and checks the configuration
func (cfg *Config) Validate() error {
	// Set defaults
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if cfg.Window == 0 {
		cfg.Window = inspect.DefaultWindow
	}
	if cfg.Rules == nil {
		cfg.Rules = &RulesConfig{}
	}

	// Check values
	if !strings.HasPrefix(cfg.Extension, ".") {
		return errors.Errorf("extension %q must start with a dot", cfg.Extension)
	}
	if cfg.Jobs < 0 {
		return errors.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}
	if cfg.Window < 0 {
		return errors.Errorf("window must not be negative, got %d", cfg.Window)
	}
	if _, err := catalog.New(cfg.CatalogOptions()); err != nil {
		return errors.Errorf("rules: %w", err)
	}

	// Clean up paths
	for i, t := range cfg.Targets {
		cfg.Targets[i] = filepath.Clean(t)
	}

	return nil
}

// CatalogOptions converts the rules block for the pattern catalog.
func (cfg *Config) CatalogOptions() catalog.Options {
	r := cfg.Rules
	if r == nil {
		return catalog.Options{}
	}
	return catalog.Options{
		MutationCall:     r.MutationCall,
		LivenessFlag:     r.LivenessFlag,
		OptionalAccessor: r.OptionalAccessor,
		FailureType:      r.FailureType,
		FailureMessage:   r.FailureMessage,
		IndentUnit:       r.IndentUnit,
		Disable:          r.Disable,
	}
}
