// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional per-repository configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-shellwords"

	"github.com/reposcope/reposcope/pkg/seagoat"
)

// FileName is the configuration file looked up in the repository root.
const FileName = ".reposcope.yaml"

type Config struct {
	// Docker is the container runtime binary. Default: "docker".
	Docker string `yaml:"docker,omitempty"`
	// TemplateDir overrides the embedded Dockerfile.seagoat and run.sh.
	TemplateDir string `yaml:"templateDir,omitempty"`
	// QueryCommand is the in-container query command line, parsed with
	// shell word splitting. The query is appended as the last argument.
	QueryCommand string `yaml:"queryCommand,omitempty"`
	// AnalysisTimeout bounds the wait for the analysis to complete,
	// e.g. "10m".
	AnalysisTimeout time.Duration `yaml:"analysisTimeout,omitempty"`
	// PollInterval is the pause between container log polls.
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
}

// Load reads the config file at path. A missing file is not an error:
// it yields the zero Config, which applies all defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalWithOptions(b, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", path, err)
	}
	return &cfg, nil
}

// LoadForRepo loads FileName from the repository root.
func LoadForRepo(repoPath string) (*Config, error) {
	return Load(filepath.Join(repoPath, FileName))
}

// SeagoatOpts translates the non-zero fields into orchestrator options.
func (cfg *Config) SeagoatOpts() ([]seagoat.Opt, error) {
	var opts []seagoat.Opt
	if cfg.TemplateDir != "" {
		opts = append(opts, seagoat.WithTemplateDir(cfg.TemplateDir))
	}
	if cfg.QueryCommand != "" {
		argv, err := shellwords.Parse(cfg.QueryCommand)
		if err != nil {
			return nil, fmt.Errorf("failed to parse queryCommand %q: %w", cfg.QueryCommand, err)
		}
		opts = append(opts, seagoat.WithQueryCommand(argv))
	}
	if cfg.AnalysisTimeout != 0 {
		opts = append(opts, seagoat.WithAnalysisTimeout(cfg.AnalysisTimeout))
	}
	if cfg.PollInterval != 0 {
		opts = append(opts, seagoat.WithPollInterval(cfg.PollInterval))
	}
	return opts, nil
}
