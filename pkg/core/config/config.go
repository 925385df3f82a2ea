// Package config loads the exhibit scout settings from a YAML file, a .env
// file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"exhibit_scout/pkg/core/edgar"
	"exhibit_scout/pkg/core/exhibit"
	"exhibit_scout/pkg/core/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Environment overrides.
const (
	EnvUserAgent   = "SEC_USER_AGENT"
	EnvDatabaseURL = "DATABASE_URL"
	EnvOutputDir   = "EXHIBIT_OUTPUT_DIR"
)

type Config struct {
	Archive  ArchiveConfig  `yaml:"archive"`
	Paths    PathsConfig    `yaml:"paths"`
	Matching MatchingConfig `yaml:"matching"`
	Runner   RunnerConfig   `yaml:"runner"`
	Database DatabaseConfig `yaml:"database"`
}

type ArchiveConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Domain    string        `yaml:"domain"`
	UserAgent string        `yaml:"user_agent"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables
	Timeout   time.Duration `yaml:"timeout"`
	Retry     RetryConfig   `yaml:"retry"`
	// CacheDir keeps fetched index pages and primary documents; empty disables.
	CacheDir string `yaml:"cache_dir"`
	// SubmissionsURL is the host serving CIK##########.json roster files.
	SubmissionsURL string `yaml:"submissions_url"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

type PathsConfig struct {
	OutputDir string `yaml:"output_dir"`
	RosterDir string `yaml:"roster_dir"`
	Manifest  string `yaml:"manifest"`
	LogFile   string `yaml:"log_file"`
}

type MatchingConfig struct {
	Forms              []string `yaml:"forms"`
	Keywords           []string `yaml:"keywords"`
	KeywordFile        string   `yaml:"keyword_file"`
	DedupeDescriptions bool     `yaml:"dedupe_descriptions"`
	KeepParentheses    bool     `yaml:"keep_parentheses"`
}

type RunnerConfig struct {
	Workers int  `yaml:"workers"`
	Report  bool `yaml:"report"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Default returns the settings the scout runs with when no file is given.
func Default() *Config {
	retry := edgar.DefaultRetryPolicy()
	return &Config{
		Archive: ArchiveConfig{
			BaseURL:        edgar.DefaultBaseURL,
			Domain:         edgar.DefaultDomain,
			UserAgent:      edgar.DefaultUserAgent,
			RateLimit:      8,
			Timeout:        30 * time.Second,
			SubmissionsURL: "https://data.sec.gov",
			Retry: RetryConfig{
				MaxAttempts:  retry.MaxAttempts,
				InitialDelay: retry.InitialDelay,
				MaxDelay:     retry.MaxDelay,
				Multiplier:   retry.Multiplier,
			},
		},
		Paths: PathsConfig{
			OutputDir: "exhibits",
			RosterDir: "companies",
			Manifest:  "exhibits_log.csv",
			LogFile:   "sec.log",
		},
		Matching: MatchingConfig{
			Forms:              []string{"10-K", "10-Q", "8-K", "S-1", "S-1/A"},
			Keywords:           append([]string(nil), exhibit.DefaultKeywords...),
			DedupeDescriptions: true,
		},
		Runner: RunnerConfig{Workers: 1},
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadEnv loads .env files into the process environment. Missing files are
// ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvUserAgent)); v != "" {
		c.Archive.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		c.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		c.Paths.OutputDir = v
	}
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	var problems []string
	if c.Archive.BaseURL == "" {
		problems = append(problems, "archive.base_url is empty")
	}
	if c.Archive.Domain == "" {
		problems = append(problems, "archive.domain is empty")
	}
	if c.Archive.RateLimit < 0 {
		problems = append(problems, "archive.rate_limit must not be negative")
	}
	if c.Archive.Retry.MaxAttempts < 1 {
		problems = append(problems, "archive.retry.max_attempts must be at least 1")
	}
	if c.Paths.OutputDir == "" {
		problems = append(problems, "paths.output_dir is empty")
	}
	if c.Paths.Manifest == "" {
		problems = append(problems, "paths.manifest is empty")
	}
	if len(c.Matching.Forms) == 0 {
		problems = append(problems, "matching.forms is empty")
	}
	if c.Runner.Workers < 1 {
		problems = append(problems, "runner.workers must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// RetryPolicy converts the retry settings for the archive client.
func (a ArchiveConfig) RetryPolicy() edgar.RetryPolicy {
	return edgar.RetryPolicy{
		MaxAttempts:  a.Retry.MaxAttempts,
		InitialDelay: a.Retry.InitialDelay,
		MaxDelay:     a.Retry.MaxDelay,
		Multiplier:   a.Retry.Multiplier,
	}
}

// FormSet returns the recognized form types as a lookup set.
func (m MatchingConfig) FormSet() map[string]bool {
	set := make(map[string]bool, len(m.Forms))
	for _, f := range m.Forms {
		set[strings.TrimSpace(f)] = true
	}
	return set
}

// ResolveKeywords returns the keyword list: the keyword file when set,
// otherwise the inline list.
func (m MatchingConfig) ResolveKeywords() ([]string, error) {
	if m.KeywordFile != "" {
		return LoadKeywords(m.KeywordFile)
	}
	return m.Keywords, nil
}

type keywordFile struct {
	Keywords []string `json:"keywords"`
}

// LoadKeywords reads an HJSON keyword file. The file is either a bare array
// of phrases or an object with a "keywords" array.
func LoadKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}

	var list []string
	if err := utils.ParseHJSONToStruct(data, &list); err == nil {
		return nonEmpty(list, path)
	}
	var obj keywordFile
	if err := utils.ParseHJSONToStruct(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file %s: %w", path, err)
	}
	return nonEmpty(obj.Keywords, path)
}

func nonEmpty(list []string, path string) ([]string, error) {
	var out []string
	for _, k := range list {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: keyword file %s has no keywords", ErrInvalidConfig, path)
	}
	return out, nil
}
