package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadProjectMissingFile(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("missing angel.yaml should not be an error: %v", err)
	}
	if p.Output != "" || len(p.Includes) != 0 {
		t.Error("missing file should yield the zero project")
	}
	if !p.CacheEnabled() {
		t.Error("cache should default to enabled")
	}
}

func TestLoadProject(t *testing.T) {
	dir := writeProject(t, `output: build/app.cpp
includes:
  - <cassert>
  - '"runtime.h"'
cache: false
format: plain
`)
	p, err := LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if p.Output != "build/app.cpp" {
		t.Errorf("output = %q", p.Output)
	}
	if len(p.Includes) != 2 || p.Includes[0] != "<cassert>" || p.Includes[1] != `"runtime.h"` {
		t.Errorf("includes = %v", p.Includes)
	}
	if p.CacheEnabled() {
		t.Error("cache: false should disable the cache")
	}
	if p.Format != "plain" {
		t.Errorf("format = %q", p.Format)
	}
}

func TestLoadProjectBadYAML(t *testing.T) {
	dir := writeProject(t, "output: [\n")
	if _, err := LoadProject(dir); err == nil {
		t.Fatal("malformed yaml should be an error")
	}
}

func TestLoadProjectBadFormat(t *testing.T) {
	dir := writeProject(t, "format: rainbow\n")
	if _, err := LoadProject(dir); err == nil {
		t.Fatal("unknown format should be rejected")
	}
}

func TestFormatValues(t *testing.T) {
	for _, format := range []string{"", "auto", "color", "plain"} {
		p := Project{Format: format}
		if err := p.validate(); err != nil {
			t.Errorf("format %q should validate: %v", format, err)
		}
	}
}
