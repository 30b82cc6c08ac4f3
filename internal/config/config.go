// Package config loads reader settings from a YAML file and turns them
// into edn options.
//
// A configuration file looks like:
//
//	fallback: unwrap
//	max_depth: 256
//	max_arena_bytes: 16777216
//	builtin_readers: true
//	extensions:
//	  ratios: true
//	  octal: false
//	  digit_separators: true
//	  namespaced_maps: true
//	  metadata: false
//
// Every key is optional. Unknown keys are an error so that a typo does not
// silently fall back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	edn "github.com/KimNorgaard/go-edn"
)

// EnvVar names the environment variable consulted by Load.
const EnvVar = "EDN_CONFIG"

// Config holds reader settings.
type Config struct {
	// Fallback is the handling of tags without a reader: passthrough,
	// unwrap or error.
	Fallback string `yaml:"fallback"`

	// MaxDepth bounds collection nesting. Zero keeps the reader default.
	MaxDepth int `yaml:"max_depth"`

	// MaxArenaBytes caps the memory of one read. Zero means unlimited.
	MaxArenaBytes int `yaml:"max_arena_bytes"`

	// BuiltinReaders installs the #inst and #uuid readers.
	BuiltinReaders bool `yaml:"builtin_readers"`

	Extensions Extensions `yaml:"extensions"`
}

// Extensions toggles syntax beyond the base EDN grammar.
type Extensions struct {
	// Ratios is on unless set to false.
	Ratios          *bool `yaml:"ratios"`
	Octal           bool  `yaml:"octal"`
	DigitSeparators bool  `yaml:"digit_separators"`
	NamespacedMaps  bool  `yaml:"namespaced_maps"`
	Metadata        bool  `yaml:"metadata"`
}

// Default returns the configuration matching the reader defaults.
func Default() *Config {
	return &Config{Fallback: edn.FallbackPassthrough.String()}
}

// Load loads the file named by EDN_CONFIG, or returns the default
// configuration when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := edn.ParseFallbackMode(c.Fallback); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxArenaBytes < 0 {
		return fmt.Errorf("max_arena_bytes must not be negative, got %d", c.MaxArenaBytes)
	}
	return nil
}

// Options returns the reader options for c.
func (c *Config) Options() ([]edn.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mode, _ := edn.ParseFallbackMode(c.Fallback)
	opts := []edn.Option{
		edn.WithFallback(mode),
		edn.MaxArenaBytes(c.MaxArenaBytes),
		edn.WithOctal(c.Extensions.Octal),
		edn.WithDigitSeparators(c.Extensions.DigitSeparators),
		edn.WithNamespacedMaps(c.Extensions.NamespacedMaps),
		edn.WithMetadata(c.Extensions.Metadata),
	}
	if c.MaxDepth > 0 {
		opts = append(opts, edn.MaxDepth(c.MaxDepth))
	}
	if c.Extensions.Ratios != nil {
		opts = append(opts, edn.WithRatios(*c.Extensions.Ratios))
	}
	if c.BuiltinReaders {
		reg := edn.NewRegistry()
		reg.RegisterBuiltins()
		opts = append(opts, edn.WithRegistry(reg))
	}
	return opts, nil
}
