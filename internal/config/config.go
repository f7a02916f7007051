package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for objtrack. Fields
// are pointers so "unset" is distinguishable from a zero value when merging
// with CLI flags.
type FileConfig struct {
	Project  *string `yaml:"project"`
	NoColor  *bool   `yaml:"no_color"`
	SortKey  *string `yaml:"sort"` // "match" or "name"
	SortDesc *bool   `yaml:"descending"`

	Objdiff *ObjdiffConfig `yaml:"objdiff"`
}

// ObjdiffConfig holds configuration for the external comparison tool.
type ObjdiffConfig struct {
	// Binary is an explicit path to the comparison tool. If empty, the
	// binary is searched in $PATH.
	Binary *string `yaml:"binary"`

	// Args are extra arguments appended to the report invocation, for
	// projects whose configuration the tool cannot discover on its own.
	Args []string `yaml:"args"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given root.
// It supports .objtrack.yml/.yaml and objtrack.yml/.yaml.
func LoadLocal(projectRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".objtrack.yml", ".objtrack.yaml", "objtrack.yml", "objtrack.yaml"} {
		p := filepath.Join(projectRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "objtrack", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// GetObjdiffConfig returns the comparison tool configuration, defaulted.
func (fc FileConfig) GetObjdiffConfig() ObjdiffConfig {
	if fc.Objdiff == nil {
		return ObjdiffConfig{}
	}
	return *fc.Objdiff
}

// GetBinaryPath returns the custom binary path or empty string.
func (oc ObjdiffConfig) GetBinaryPath() string {
	if oc.Binary == nil {
		return ""
	}
	return *oc.Binary
}
