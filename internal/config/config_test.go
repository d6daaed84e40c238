package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Trace.Output != "-" {
		t.Errorf("Trace.Output = %q, want %q", c.Trace.Output, "-")
	}
	if c.Archive.Path != "goodtime-archive.db" {
		t.Errorf("Archive.Path = %q, want %q", c.Archive.Path, "goodtime-archive.db")
	}
	if c.Telemetry.Path != "goodtime-telemetry.duckdb" {
		t.Errorf("Telemetry.Path = %q, want %q", c.Telemetry.Path, "goodtime-telemetry.duckdb")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	contents := `
[trace]
enabled = true
output = "trace.log"

[archive]
enabled = true
path = "custom-archive.db"

[snapshot]
compress = true
`
	if err := os.WriteFile(filepath.Join(dir, "goodtime.toml"), []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Trace.Enabled || c.Trace.Output != "trace.log" {
		t.Errorf("Trace = %+v, want enabled with output trace.log", c.Trace)
	}
	if !c.Archive.Enabled || c.Archive.Path != "custom-archive.db" {
		t.Errorf("Archive = %+v, want enabled with path custom-archive.db", c.Archive)
	}
	if !c.Snapshot.Compress {
		t.Error("Snapshot.Compress = false, want true")
	}
	// Telemetry was left unset in the file, so it should fall back to
	// its default path.
	if c.Telemetry.Path != "goodtime-telemetry.duckdb" {
		t.Errorf("Telemetry.Path = %q, want default", c.Telemetry.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Error("Load of a directory with no goodtime.toml should fail")
	}
}

func TestFindAndLoadWalksUpToRoot(t *testing.T) {
	root := t.TempDir()
	contents := "[trace]\nenabled = true\n"
	if err := os.WriteFile(filepath.Join(root, "goodtime.toml"), []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if !c.Trace.Enabled {
		t.Error("expected the config found by walking up to be loaded")
	}
}

func TestFindAndLoadFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Trace.Output != "-" {
		t.Errorf("expected defaults when no goodtime.toml exists, got %+v", c)
	}
}
