// Package config holds compiler-wide constants and the optional
// angel.yaml project file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project represents the top-level angel.yaml configuration.
type Project struct {
	// Output is the path the generated C++ is written to. Defaults to
	// the source file name with a .cpp extension.
	Output string `yaml:"output,omitempty"`

	// Includes lists extra headers added to every translation unit,
	// in the form "<vector>" or "\"local.h\"".
	Includes []string `yaml:"includes,omitempty"`

	// Cache enables the compiled-artifact cache. Defaults to true.
	Cache *bool `yaml:"cache,omitempty"`

	// Format selects diagnostic rendering: "auto" (color on a TTY),
	// "color", or "plain".
	Format string `yaml:"format,omitempty"`
}

// LoadProject reads angel.yaml from dir. A missing file yields the
// zero Project with no error.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func (p *Project) validate() error {
	switch p.Format {
	case "", "auto", "color", "plain":
	default:
		return fmt.Errorf("unknown format %q (want auto, color or plain)", p.Format)
	}
	return nil
}

// CacheEnabled reports whether the artifact cache should be used.
func (p *Project) CacheEnabled() bool {
	if p.Cache == nil {
		return true
	}
	return *p.Cache
}
