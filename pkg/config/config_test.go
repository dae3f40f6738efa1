package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
app: com.example.notes
device: emulator-5554
policy: task
task: "open the settings screen"
timeout: 120
event_count: 200
unique_screens: 40
random_input: true
avoid_revisits: true
baseline_data_path: memory.json
is_emulator: true
critical_sections:
  - name: settings
    keywords: [settings, preferences]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App != "com.example.notes" {
		t.Errorf("expected app com.example.notes, got %s", cfg.App)
	}
	if cfg.Policy != "task" || cfg.Task != "open the settings screen" {
		t.Errorf("expected task policy with task text, got %s / %q", cfg.Policy, cfg.Task)
	}
	if cfg.Timeout != 120 || cfg.EventCount != 200 || cfg.UniqueScreens != 40 {
		t.Errorf("unexpected budget: %d %d %d", cfg.Timeout, cfg.EventCount, cfg.UniqueScreens)
	}
	if !cfg.RandomInput || !cfg.AvoidRevisits || !cfg.IsEmulator {
		t.Error("expected random_input, avoid_revisits, is_emulator all true")
	}
	if cfg.BaselineDataPath != "memory.json" {
		t.Errorf("expected baseline_data_path memory.json, got %s", cfg.BaselineDataPath)
	}
	if len(cfg.CriticalSections) != 1 || cfg.CriticalSections[0].Name != "settings" {
		t.Errorf("unexpected critical sections: %+v", cfg.CriticalSections)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("app: com.example.notes\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy != DefaultPolicy {
		t.Errorf("expected default policy %s, got %s", DefaultPolicy, cfg.Policy)
	}
	if cfg.Output != "output" {
		t.Errorf("expected default output dir, got %s", cfg.Output)
	}
}

func TestLoad_NotApplicablePlaceholders(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
app: com.example.notes
task: "N/A"
baseline_data_path: "n/a"
device: "N/A"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Task != "" || cfg.BaselineDataPath != "" || cfg.Device != "" {
		t.Errorf("placeholders not cleared: task=%q baseline=%q device=%q",
			cfg.Task, cfg.BaselineDataPath, cfg.Device)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(`app: [invalid yaml`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing app", func(c *Config) { c.App = "" }, "app"},
		{"unknown policy", func(c *Config) { c.Policy = "banana" }, "policy"},
		{"task policy without task", func(c *Config) { c.Policy = "task"; c.Task = "" }, "task"},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout"},
		{"negative event count", func(c *Config) { c.EventCount = -5 }, "event_count"},
		{"section without keywords", func(c *Config) {
			c.CriticalSections = []CriticalSection{{Name: "login"}}
		}, "critical_sections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{App: "com.example.notes", Policy: "dfs"}
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ce *core.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, ce.Field)
			}
		})
	}
}

func TestTaskKeywords(t *testing.T) {
	cfg := &Config{Task: "Open the Settings screen, then enable dark mode."}

	got := cfg.TaskKeywords()
	want := []string{"settings", "screen", "enable", "dark", "mode"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTaskKeywords_Empty(t *testing.T) {
	cfg := &Config{}
	if kw := cfg.TaskKeywords(); kw != nil {
		t.Errorf("expected nil keywords, got %v", kw)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy != DefaultPolicy {
		t.Errorf("expected defaults applied, got policy %s", cfg.Policy)
	}
}
