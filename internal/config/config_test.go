package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aurora-lang/aurora/internal/diagnostic"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvStdlibDir, EnvStdlibVersion, EnvColor, EnvDebug} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Color != "auto" || config.StdlibDir != "" || config.Debug {
		t.Fatalf("unexpected defaults: %+v", config)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	content := `{"module_name": "demo", "stdlib_dir": "lib", "stdlib_version": "^1.0", "color": "never", "verbose": true}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.ModuleName != "demo" || !config.Verbose {
		t.Fatalf("file values not loaded: %+v", config)
	}
	if expected := filepath.Join(dir, "lib"); config.StdlibDir != expected {
		t.Fatalf("stdlib_dir expected=%q, got=%q", expected, config.StdlibDir)
	}
	if config.ColorMode() != diagnostic.ColorNever {
		t.Fatalf("color expected=%q, got=%q", diagnostic.ColorNever, config.ColorMode())
	}

	t.Setenv(EnvStdlibDir, "/opt/aurora/std")
	t.Setenv(EnvStdlibVersion, "~1.2")
	t.Setenv(EnvColor, "always")
	t.Setenv(EnvDebug, "true")

	config, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.StdlibDir != "/opt/aurora/std" || config.StdlibVersion != "~1.2" || config.Color != "always" || !config.Debug {
		t.Fatalf("environment overrides not applied: %+v", config)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a decode error")
	}

	t.Setenv(EnvDebug, "maybe")
	if _, err := Load(filepath.Join(t.TempDir(), DefaultFile)); err == nil {
		t.Fatalf("expected an error for a malformed %s", EnvDebug)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		config  ProjectConfig
		wantErr bool
	}{
		{ProjectConfig{}, false},
		{ProjectConfig{StdlibVersion: ">= 1.0, < 2", Color: "always"}, false},
		{ProjectConfig{StdlibVersion: "not-a-version"}, true},
		{ProjectConfig{Color: "rainbow"}, true},
	}

	for _, tt := range tests {
		err := tt.config.Validate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("Validate(%+v) expected error=%v, got=%v", tt.config, tt.wantErr, err)
		}
	}
}

func TestInit(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "proj", DefaultFile)
	config, err := Init(path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if config.ModuleName != "proj" {
		t.Fatalf("module name expected=%q, got=%q", "proj", config.ModuleName)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.StdlibVersion != "^1.0" {
		t.Fatalf("stdlib_version expected=%q, got=%q", "^1.0", loaded.StdlibVersion)
	}

	if _, err := Init(path); err == nil {
		t.Fatalf("Init should refuse to overwrite")
	}
}
