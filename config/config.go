// Package config loads tislc settings from YAML or JSON files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/tisl/abi"
	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/target"
)

// DefaultTarget is used when neither the file nor the flags name one.
const DefaultTarget = "rust-wasmtime"

// Config represents the complete configuration.
type Config struct {
	Target  string                       `yaml:"target" json:"target"`
	ABISize string                       `yaml:"abiSize" json:"abiSize"`
	Output  string                       `yaml:"output" json:"output"`
	Targets map[string]map[string]string `yaml:"targets" json:"targets"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Target:  DefaultTarget,
		Targets: map[string]map[string]string{},
	}
}

// LoadFile loads configuration from a file (YAML or JSON based on extension).
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			File(path).
			Detail("reading config file").
			Cause(err).
			Build()
	}
	if err := c.Load(data, filepath.Ext(path)); err != nil {
		if e, ok := err.(*errors.Error); ok {
			return e.WithFile(path)
		}
		return err
	}
	return nil
}

// Load parses data in the format named by ext (".yaml", ".yml" or
// ".json") and merges it over c. Any other ext tries YAML, then JSON.
func (c *Config) Load(data []byte, ext string) error {
	var loaded Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return parseError("YAML", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &loaded); err != nil {
			return parseError("JSON", err)
		}
	default:
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			if err := json.Unmarshal(data, &loaded); err != nil {
				return parseError("YAML or JSON", err)
			}
		}
	}
	if loaded.ABISize != "" {
		if _, err := abi.ParseSize(loaded.ABISize); err != nil {
			return err
		}
	}
	c.merge(&loaded)
	return nil
}

func parseError(format string, err error) *errors.Error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Detail("parsing %s config", format).
		Cause(err).
		Build()
}

// merge merges the loaded config into the current config.
func (c *Config) merge(loaded *Config) {
	if loaded.Target != "" {
		c.Target = loaded.Target
	}
	if loaded.ABISize != "" {
		c.ABISize = loaded.ABISize
	}
	if loaded.Output != "" {
		c.Output = loaded.Output
	}
	if c.Targets == nil {
		c.Targets = map[string]map[string]string{}
	}
	for name, opts := range loaded.Targets {
		merged := c.Targets[name]
		if merged == nil {
			merged = map[string]string{}
		}
		for k, v := range opts {
			merged[k] = v
		}
		c.Targets[name] = merged
	}
}

// Options returns the options configured for t. The top-level ABI size
// becomes the target's "abi-size" option when t accepts one and the
// target section does not set it.
func (c *Config) Options(t target.Target) target.Options {
	opts := target.Options(c.Targets[t.Name()]).Clone()
	if c.ABISize == "" {
		return opts
	}
	if _, set := opts["abi-size"]; set {
		return opts
	}
	if ct, ok := t.(target.Configurable); ok {
		for _, spec := range ct.OptionSchema() {
			if spec.Name == "abi-size" {
				opts["abi-size"] = c.ABISize
			}
		}
	}
	return opts
}
