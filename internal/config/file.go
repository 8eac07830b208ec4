package config

// Optional YAML config file. It carries the settings that do not belong on
// every invocation: the trusted encoder path, verification, extra protected
// directories, and logging. CLI flags always override file values, so the
// file is located and applied before [ParseFlags] runs.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML schema. Pointers distinguish "absent" from
// zero values so the file only overrides what it actually sets.
type fileConfig struct {
	FFmpegPath       *string  `yaml:"ffmpeg_path"`
	VerifyEncoder    *bool    `yaml:"verify_encoder"`
	ProtectedDirs    []string `yaml:"protected_dirs"`
	Quality          *int     `yaml:"quality"`
	Preset           *string  `yaml:"preset"`
	Format           *string  `yaml:"format"`
	KillGraceSeconds *int     `yaml:"kill_grace_seconds"`
	LogLevel         *string  `yaml:"log_level"`
	LogFile          *string  `yaml:"log_file"`
}

// DefaultConfigPath is where the config file lives when --config is not
// given: $XDG_CONFIG_HOME/vidsqueeze/config.yaml (or the OS equivalent).
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vidsqueeze", "config.yaml")
}

// ConfigPathFromArgs pre-scans args for --config so the file can be loaded
// before flag parsing. Returns the default path when it exists, "" when no
// file is in play.
func ConfigPathFromArgs(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(a, "=")
		if name != "--config" && name != "-config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	if def := DefaultConfigPath(); def != "" {
		if _, err := os.Stat(def); err == nil {
			return def
		}
	}
	return ""
}

// LoadFile overlays cfg with the values set in the YAML file at path.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.FFmpegPath != nil {
		cfg.FFmpegPath = *fc.FFmpegPath
	}
	if fc.VerifyEncoder != nil {
		cfg.VerifyEncoder = *fc.VerifyEncoder
	}
	if len(fc.ProtectedDirs) > 0 {
		cfg.ExtraProtectedDirs = append(cfg.ExtraProtectedDirs, fc.ProtectedDirs...)
	}
	if fc.Quality != nil {
		cfg.Quality = *fc.Quality
	}
	if fc.Preset != nil {
		cfg.Preset = *fc.Preset
	}
	if fc.Format != nil {
		cfg.Format = *fc.Format
	}
	if fc.KillGraceSeconds != nil {
		cfg.KillGraceSeconds = *fc.KillGraceSeconds
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	cfg.ConfigFile = path
	return nil
}
