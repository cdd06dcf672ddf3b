// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Run inputs
	Target       string `json:"target,omitempty"`        // Target identifier (gene symbol or UniProt accession)
	Sequence     string `json:"sequence,omitempty"`      // Raw amino-acid sequence (alternative to target)
	Profile      string `json:"profile,omitempty"`       // Named generation profile
	ProfilesFile string `json:"profiles_file,omitempty"` // Path to a YAML file with extra profiles

	// NVIDIA NIM access
	APIKey         string `json:"api_key,omitempty"`                                          // NVIDIA API key
	BiologyURL     string `json:"biology_url,omitempty" validate:"omitempty,url"`             // Biology services base URL
	LLMURL         string `json:"llm_url,omitempty" validate:"omitempty,url"`                 // Chat completions base URL
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=3600"` // Remote call timeout

	// Chat provider
	Provider     string `json:"provider,omitempty" validate:"omitempty,oneof=nemotron gemini"` // Assessment/chat provider
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`                                      // Gemini API key (provider=gemini)

	// Pipeline behavior
	CandidateCount int    `json:"candidate_count,omitempty" validate:"omitempty,min=1,max=100"` // Molecules to request
	FoldCeiling    int    `json:"fold_ceiling,omitempty" validate:"omitempty,min=1,max=2000"`   // Longest sequence sent to ESMFold
	Seed           string `json:"seed,omitempty"`                                               // Seed SMILES override
	OutputDir      string `json:"output_dir,omitempty"`                                         // Artifact output directory
	Render         bool   `json:"render,omitempty"`                                             // Render HTML/SVG visualizations
	Verbose        bool   `json:"verbose,omitempty"`                                            // Print detailed progress information

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a config from environment variables. File and flag values
// take precedence; environment values fill whatever remains empty.
func FromEnv() Config {
	cfg := Config{
		APIKey:       os.Getenv("NVIDIA_API_KEY"),
		BiologyURL:   os.Getenv("NVIDIA_BIOLOGY_URL"),
		LLMURL:       os.Getenv("NVIDIA_LLM_URL"),
		Provider:     os.Getenv("CROWELM_PROVIDER"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OutputDir:    os.Getenv("CROWELM_OUTPUT_DIR"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}
	if v := os.Getenv("NVIDIA_TIMEOUT"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = seconds
		}
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Target != "" && c.Sequence != "" {
		return fmt.Errorf("config error: 'target' and 'sequence' are mutually exclusive")
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.ProfilesFile != "" {
		if _, err := os.Stat(c.ProfilesFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: profiles file not found: %s", c.ProfilesFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Target == "" {
		result.Target = defaults.Target
	}
	if result.Sequence == "" {
		result.Sequence = defaults.Sequence
	}
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.ProfilesFile == "" {
		result.ProfilesFile = defaults.ProfilesFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BiologyURL == "" {
		result.BiologyURL = defaults.BiologyURL
	}
	if result.LLMURL == "" {
		result.LLMURL = defaults.LLMURL
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.Seed == "" {
		result.Seed = defaults.Seed
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.CandidateCount == 0 {
		result.CandidateCount = defaults.CandidateCount
	}
	if result.FoldCeiling == 0 {
		result.FoldCeiling = defaults.FoldCeiling
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
