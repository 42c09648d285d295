package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "celia.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("CELIA_DEV_MODE", "true")
	path := writeConfig(t, "{}")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/celia.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Generation.StructuredModel != "openai" || cfg.Generation.NarrativeModel != "groq" {
		t.Errorf("generation models = %q/%q", cfg.Generation.StructuredModel, cfg.Generation.NarrativeModel)
	}
	if time.Duration(cfg.Worker.AutosaveInterval) != 30*time.Second {
		t.Errorf("AutosaveInterval = %v", time.Duration(cfg.Worker.AutosaveInterval))
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoadFromFile_YAMLOverridesDefaults(t *testing.T) {
	t.Setenv("CELIA_DEV_MODE", "true")
	path := writeConfig(t, `
server:
  port: 9000
  read_timeout: 5s
generation:
  base_url: http://gen:8000
  timeout: 90s
worker:
  autosave_interval: 2m
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if time.Duration(cfg.Server.ReadTimeout) != 5*time.Second {
		t.Errorf("ReadTimeout = %v", time.Duration(cfg.Server.ReadTimeout))
	}
	if cfg.Generation.BaseURL != "http://gen:8000" {
		t.Errorf("Generation.BaseURL = %q", cfg.Generation.BaseURL)
	}
	if time.Duration(cfg.Worker.AutosaveInterval) != 2*time.Minute {
		t.Errorf("AutosaveInterval = %v", time.Duration(cfg.Worker.AutosaveInterval))
	}
}

func TestLoadFromFile_EnvOverridesYAML(t *testing.T) {
	t.Setenv("CELIA_DEV_MODE", "true")
	t.Setenv("CELIA_PORT", "7777")
	t.Setenv("CELIA_GENERATION_URL", "http://override:8000")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
	if cfg.Generation.BaseURL != "http://override:8000" {
		t.Errorf("Generation.BaseURL = %q", cfg.Generation.BaseURL)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("OpenAI.APIKey = %q", cfg.OpenAI.APIKey)
	}
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	t.Setenv("CELIA_DEV_MODE", "true")
	path := writeConfig(t, "server:\n  read_timeout: not-a-duration\n")

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	t.Setenv("CELIA_DEV_MODE", "")
	t.Setenv("CELIA_API_KEY", "")
	path := writeConfig(t, "{}")

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error when CELIA_API_KEY is unset")
	}

	t.Setenv("CELIA_API_KEY", "secret")
	if _, err := LoadFromFile(path); err != nil {
		t.Errorf("unexpected error with API key set: %v", err)
	}
}

func TestValidate_DevModeSkipsKeys(t *testing.T) {
	t.Setenv("CELIA_DEV_MODE", "true")
	t.Setenv("CELIA_API_KEY", "")
	path := writeConfig(t, "{}")

	if _, err := LoadFromFile(path); err != nil {
		t.Errorf("dev mode should skip key validation: %v", err)
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	d := Duration(90 * time.Second)
	v, err := d.MarshalYAML()
	if err != nil {
		t.Fatal(err)
	}
	if v != "1m30s" {
		t.Errorf("MarshalYAML() = %v, want 1m30s", v)
	}
}
