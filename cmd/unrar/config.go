// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/woozymasta/pathrules"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/unrar"
)

// Environment variables read by the CLI.
const (
	envPassword = "UNRAR_PASSWORD"
	envLogLevel = "UNRAR_LOG_LEVEL"
	envConfig   = "UNRAR_CONFIG"
)

// defaultLogLevel keeps diagnostics off the listing output unless asked for.
const defaultLogLevel = slog.LevelWarn

// fileConfig is the YAML config file layout.
type fileConfig struct {
	// Directory is the extraction output directory.
	Directory string `yaml:"directory,omitempty"`
	// Mode is the output file mode.
	Mode string `yaml:"mode,omitempty"`
	// Password is the archive password.
	Password string `yaml:"password,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// Include lists patterns of entries to extract; empty means all.
	Include []string `yaml:"include,omitempty"`
	// Exclude lists patterns of entries to skip.
	Exclude []string `yaml:"exclude,omitempty"`
	// Sanitize enables portable output names.
	Sanitize bool `yaml:"sanitize,omitempty"`
	// CaseSensitive disables case-insensitive pattern matching.
	CaseSensitive bool `yaml:"case_sensitive,omitempty"`
}

// config is the merged CLI configuration.
type config struct {
	extract  unrar.ExtractOptions
	password string
	logLevel slog.Level
}

// loadConfig merges config file, environment, and flags, in increasing precedence.
func loadConfig(flagSet *pflag.FlagSet, flags *cliFlags) (config, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return config{}, fmt.Errorf("load env file %s: %w", flags.envFile, err)
		}
	}

	var fc fileConfig
	configPath := flags.configPath
	if configPath == "" {
		configPath = os.Getenv(envConfig)
	}

	if configPath != "" {
		var err error
		fc, err = readConfigFile(configPath)
		if err != nil {
			return config{}, err
		}
	}

	if v := os.Getenv(envPassword); v != "" {
		fc.Password = v
	}

	if v := os.Getenv(envLogLevel); v != "" {
		fc.LogLevel = v
	}

	applyFlags(&fc, flagSet, flags)

	return fc.resolve()
}

// readConfigFile decodes a YAML config file, rejecting unknown keys.
func readConfigFile(path string) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var fc fileConfig
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	return fc, nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(fc *fileConfig, flagSet *pflag.FlagSet, flags *cliFlags) {
	if flagSet.Changed("directory") {
		fc.Directory = flags.directory
	}

	if flagSet.Changed("password") {
		fc.Password = flags.password
	}

	if flagSet.Changed("mode") {
		fc.Mode = flags.mode
	}

	if flagSet.Changed("log-level") {
		fc.LogLevel = flags.logLevel
	}

	if flagSet.Changed("sanitize") {
		fc.Sanitize = flags.sanitize
	}

	if flagSet.Changed("include") {
		fc.Include = flags.include
	}

	if flagSet.Changed("exclude") {
		fc.Exclude = flags.exclude
	}
}

// resolve converts raw values to typed options.
func (fc fileConfig) resolve() (config, error) {
	cfg := config{
		password: fc.Password,
		logLevel: defaultLogLevel,
		extract: unrar.ExtractOptions{
			Directory:     fc.Directory,
			FileMode:      unrar.ExtractFileMode(fc.Mode),
			SanitizeNames: fc.Sanitize,
		},
	}

	if fc.LogLevel != "" {
		if err := cfg.logLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return config{}, fmt.Errorf("log level %q: %w", fc.LogLevel, err)
		}
	}

	if len(fc.Include) == 0 && len(fc.Exclude) == 0 {
		return cfg, nil
	}

	// With include patterns only matching entries are extracted; excludes listed later win.
	defaultAction := pathrules.ActionInclude
	if len(fc.Include) > 0 {
		defaultAction = pathrules.ActionExclude
	}

	cfg.extract.Filter = append(unrar.IncludeRules(fc.Include...), unrar.ExcludeRules(fc.Exclude...)...)
	cfg.extract.FilterMatcherOptions = pathrules.MatcherOptions{
		CaseInsensitive: !fc.CaseSensitive,
		DefaultAction:   defaultAction,
	}

	return cfg, nil
}
