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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/embear/fitarchiver/pkg/archive"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
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

// 📚 Config represents the complete archiver configuration. It is built
// once at startup and passed around as an immutable value; there is no
// ambient mutable state.
type Config struct {
	Directory string `json:"directory" yaml:"directory" hcl:"directory,optional"`             // archive base directory
	Template  string `json:"file_template" yaml:"file_template" hcl:"file_template,optional"` // destination path template
	Move      bool   `json:"move,omitempty" yaml:"move,omitempty" hcl:"move,optional"`        // move instead of copy
	DryRun    bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
	MaxSuffix int    `json:"max_suffix,omitempty" yaml:"max_suffix,omitempty" hcl:"max_suffix,optional"` // collision suffix ceiling
	Jobs      int    `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`                   // concurrent workers
	Debug     bool   `json:"debug,omitempty" yaml:"debug,omitempty" hcl:"debug,optional"`                // debug logging
}

// 🏭 Default returns a configuration with all defaults applied
func Default() *Config {
	return &Config{
		Directory: ".",
		Template:  archive.DefaultTemplate,
		MaxSuffix: 100,
		Jobs:      1,
	}
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

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Directory == "" {
		cfg.Directory = "."
	}
	cfg.Directory = filepath.Clean(cfg.Directory)

	if cfg.Template == "" {
		cfg.Template = archive.DefaultTemplate
	}

	if cfg.MaxSuffix == 0 {
		cfg.MaxSuffix = 100
	}
	if cfg.MaxSuffix < 0 {
		return errors.Errorf("max_suffix must be positive, got %d", cfg.MaxSuffix)
	}

	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}
	if cfg.Jobs < 0 {
		return errors.Errorf("jobs must be positive, got %d", cfg.Jobs)
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	op := "copy"
	if cfg.Move {
		op = "move"
	}
	if cfg.DryRun {
		op += " (dry-run)"
	}
	return fmt.Sprintf("%s -> %s [%s]", cfg.Template, cfg.Directory, op)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
