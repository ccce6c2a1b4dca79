// Package config provides configuration loading and validation for the CLI
// and server. Configuration is an explicit value passed to the components
// that need it; there is no process-global settings object.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default limits and paths applied when neither the config file nor flags
// set a value.
const (
	DefaultTemplate      = "templates/one_page_resume.tex"
	DefaultOutputDir     = "output"
	DefaultMaxIterations = 5
)

// Config represents the application configuration. It can be loaded from a
// JSON file; all fields are optional there. Missing values use defaults or
// must be provided via CLI flags or environment variables.
type Config struct {
	// Paths
	Resume    string `json:"resume,omitempty"`     // Path to resume JSON file
	Job       string `json:"job,omitempty"`        // Path to job posting text file
	JobURL    string `json:"job_url,omitempty"`    // URL to fetch job posting from
	Template  string `json:"template,omitempty"`   // Path to LaTeX template
	OutputDir string `json:"output_dir,omitempty"` // Directory for generated artifacts

	// Limits
	MaxIterations    int `json:"max_iterations,omitempty"`      // Page-fit optimization budget
	MaxBulletsPerJob int `json:"max_bullets_per_job,omitempty"` // Tailoring bullet cap per role
	MaxProjects      int `json:"max_projects,omitempty"`        // Tailoring project cap

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	UseAI       bool   `json:"use_ai,omitempty"`       // Use AI-backed content reduction
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA job sites
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// FromEnv fills API key and database URL from the environment when unset.
// Flag and config file values take precedence.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

// Validate checks that the configuration has valid values.
// Required fields are checked at the CLI layer after merging.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if c.MaxIterations < 0 {
		return fmt.Errorf("config error: 'max_iterations' must be non-negative")
	}
	if c.MaxBulletsPerJob < 0 {
		return fmt.Errorf("config error: 'max_bullets_per_job' must be non-negative")
	}
	if c.MaxProjects < 0 {
		return fmt.Errorf("config error: 'max_projects' must be non-negative")
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.MaxBulletsPerJob == 0 {
		result.MaxBulletsPerJob = defaults.MaxBulletsPerJob
	}
	if result.MaxProjects == 0 {
		result.MaxProjects = defaults.MaxProjects
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags always win for bools)

	return result
}

// ApplyDefaults fills remaining zero values with the built-in defaults.
func (c *Config) ApplyDefaults() {
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
}
