// Package config handles configuration for uiexplorer.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

// Policy names; mirrored here so config validation does not depend on the
// policy package.
var knownPolicies = []string{"dfs", "bfs", "dfs_greedy", "bfs_greedy", "task"}

// DefaultPolicy is used when the config does not name one.
const DefaultPolicy = "dfs_greedy"

// CriticalSection names a region of the app recognized by keyword match.
type CriticalSection struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Config represents the exploration configuration (config.yaml).
type Config struct {
	// Target selection
	App    string `yaml:"app"`    // Package identifier of the app under exploration
	Device string `yaml:"device"` // Serial of the target device; empty picks the only connected one
	Output string `yaml:"output"` // Artifact directory

	// Strategy
	Policy      string `yaml:"policy"`       // dfs | bfs | dfs_greedy | bfs_greedy | task
	Task        string `yaml:"task"`         // Natural-language task for the task policy
	RandomInput bool   `yaml:"random_input"` // Shuffle candidate actions between runs
	Seed        int64  `yaml:"seed"`         // Shuffle seed; 0 for deterministic

	// Budget; zero disables a bound
	Timeout       int `yaml:"timeout"` // Seconds of wall clock
	EventCount    int `yaml:"event_count"`
	UniqueScreens int `yaml:"unique_screens"`

	// Cross-run memory
	AvoidRevisits    bool   `yaml:"avoid_revisits"`
	BaselineDataPath string `yaml:"baseline_data_path"`

	// Environment
	IsEmulator bool `yaml:"is_emulator"`

	CriticalSections []CriticalSection `yaml:"critical_sections"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"config.yaml", "config.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	cfg := &Config{}
	cfg.normalize()
	return cfg, nil
}

// normalize clears placeholder values and fills defaults. Upstream tooling
// emits "N/A" for optional fields it leaves unset; those read as absent.
func (c *Config) normalize() {
	for _, f := range []*string{&c.Task, &c.BaselineDataPath, &c.Device, &c.Output} {
		if strings.EqualFold(strings.TrimSpace(*f), "N/A") {
			*f = ""
		}
	}
	if c.Policy == "" {
		c.Policy = DefaultPolicy
	}
	if c.Output == "" {
		c.Output = "output"
	}
}

// Validate checks the configuration and returns a ConfigError naming the
// first offending field.
func (c *Config) Validate() error {
	if c.App == "" {
		return &core.ConfigError{Field: "app", Reason: "package identifier is required"}
	}
	valid := false
	for _, p := range knownPolicies {
		if c.Policy == p {
			valid = true
			break
		}
	}
	if !valid {
		return &core.ConfigError{Field: "policy", Reason: "must be one of " + strings.Join(knownPolicies, ", ")}
	}
	if c.Policy == "task" && c.Task == "" {
		return &core.ConfigError{Field: "task", Reason: "required for the task policy"}
	}
	if c.Timeout < 0 {
		return &core.ConfigError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.EventCount < 0 {
		return &core.ConfigError{Field: "event_count", Reason: "must not be negative"}
	}
	if c.UniqueScreens < 0 {
		return &core.ConfigError{Field: "unique_screens", Reason: "must not be negative"}
	}
	for _, s := range c.CriticalSections {
		if s.Name == "" {
			return &core.ConfigError{Field: "critical_sections", Reason: "section without a name"}
		}
		if len(s.Keywords) == 0 {
			return &core.ConfigError{Field: "critical_sections", Reason: "section " + s.Name + " has no keywords"}
		}
	}
	return nil
}

// TaskKeywords splits the task sentence into lowercase match keywords,
// dropping filler words that would match everything.
func (c *Config) TaskKeywords() []string {
	if c.Task == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(c.Task), func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '.' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "into": true,
	"from": true, "then": true, "open": true, "tap": true, "app": true,
}
