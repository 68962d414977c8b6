// Package config loads the planner's tunable settings from an optional
// YAML file, using koanf the way moolen-spectre's internal/config package
// is set up to (koanf_deps.go there declares the same three koanf modules
// but leaves them unwired; here they are actually loaded).
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the planner's runtime-tunable settings.
type Config struct {
	// OutputPath is where the CLI writes the solved Solution JSON. Empty
	// means stdout.
	OutputPath string `koanf:"output_path"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `koanf:"log_level"`
}

// Default returns the Config used when no file is supplied.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load reads path (a YAML file) over top of Default, returning Default
// unchanged if path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, err
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
