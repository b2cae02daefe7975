// Package hostconfig loads the reference host runtime's configuration and
// scripted-input file formats (spec §6.6's CLI surface, SPEC_FULL §1.1
// "Configuration"): runtime mode, script path, step limits, and budget
// defaults. The in-process core itself never depends on this package —
// kernel construction always takes explicit constructor arguments — this is
// purely the cmd/ host boundary's own configuration layer, grounded on the
// teacher's internal/config/loader.go (YAML-backed, missing-file-is-
// defaults, structured error on malformed YAML).
package hostconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects which kernel variant the host runtime drives.
type Mode string

const (
	ModeSim Mode = "sim"
	ModeHAL Mode = "hal"
)

// BudgetDefaults mirrors internal/budget.Caps in a YAML-friendly shape. The
// cmd host runtime's "spawn" step passes an empty BudgetDefaults (no caps);
// Config.Budget is loaded but not applied to spawned tasks.
type BudgetDefaults struct {
	Messages       *uint64 `yaml:"messages,omitempty"`
	CPUTicks       *uint64 `yaml:"cpu_ticks,omitempty"`
	StorageOps     *uint64 `yaml:"storage_ops,omitempty"`
	PipelineStages *uint64 `yaml:"pipeline_stages,omitempty"`
}

// Config is the host runtime's top-level configuration document.
type Config struct {
	Mode        Mode           `yaml:"mode"`
	Script      string         `yaml:"script"`
	MaxSteps    int            `yaml:"max_steps"`
	ExitOnIdle  bool           `yaml:"exit_on_idle"`
	Budget      BudgetDefaults `yaml:"budget"`
}

// Default returns the host runtime's baked-in configuration, used when no
// config file is present.
func Default() Config {
	return Config{Mode: ModeSim, MaxSteps: 0, ExitOnIdle: false}
}

// Load reads and parses a YAML config file at path. A missing file is not
// an error: it yields Default() verbatim, matching the teacher's
// "no config.yaml found, using defaults" behavior. A present-but-malformed
// file is a hard error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("hostconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("hostconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Step is one entry of a scripted-input file (--script): a named action to
// drive against the running kernel, with opaque string parameters the
// command layer interprets.
type Step struct {
	Action string            `yaml:"action"`
	Params map[string]string `yaml:"params,omitempty"`
}

// Script is a parsed --script file: an ordered list of Steps to feed the
// host runtime instead of interactive input.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// LoadScript reads and parses a YAML scripted-input file.
func LoadScript(path string) (Script, error) {
	var s Script
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("hostconfig: reading script %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("hostconfig: parsing script %s: %w", path, err)
	}
	return s, nil
}
