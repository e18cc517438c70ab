// Package config loads scraper configuration from an optional YAML file and
// the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"

	ExtractorSECAPI = "secapi"
	ExtractorVertex = "vertex"
)

// Config holds every setting of the scraper. Keys are the lowercased
// environment variable names, so PROJECT_ID sets project_id.
type Config struct {
	ProjectID          string `koanf:"project_id"`
	StoreBackend       string `koanf:"store_backend"`
	FilingsCollection  string `koanf:"filings_collection"`
	ContentBucket      string `koanf:"content_bucket"`
	ContentInlineLimit int    `koanf:"content_inline_limit"`

	ExtractorProvider string `koanf:"extractor_provider"`
	SECAPIKey         string `koanf:"sec_api_key"`
	SECAPIBaseURL     string `koanf:"sec_api_base_url"`
	VertexAIRegion    string `koanf:"vertex_ai_region"`
	VertexModel       string `koanf:"vertex_model"`

	WorkflowID       string `koanf:"workflow_id"`
	WorkflowLocation string `koanf:"workflow_location"`

	DisplayLimit          int           `koanf:"display_limit"`
	ExtractionConcurrency int           `koanf:"extraction_concurrency"`
	SectionTimeout        time.Duration `koanf:"section_timeout"`
	CommitTimeout         time.Duration `koanf:"commit_timeout"`
	AllowedHosts          []string      `koanf:"allowed_hosts"`

	Port     int    `koanf:"port"`
	LogLevel string `koanf:"log_level"`
}

// Load reads the YAML file named by CONFIG_FILE, if any, then overrides it
// with environment variables, applies defaults and validates the result.
func Load() (*Config, error) {
	return LoadWithFile(os.Getenv("CONFIG_FILE"))
}

// LoadWithFile is Load with an explicit YAML path. An empty path skips the file.
func LoadWithFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// PROJECT_ID -> project_id. Keys keep their underscores; the "."
	// delimiter never appears in variable names.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Comma separated lists arrive from the environment as a single string.
	if len(cfg.AllowedHosts) == 1 {
		cfg.AllowedHosts = splitList(cfg.AllowedHosts[0])
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreFirestore
	}
	if cfg.FilingsCollection == "" {
		cfg.FilingsCollection = "filings"
	}
	if cfg.ContentInlineLimit == 0 {
		cfg.ContentInlineLimit = 900_000
	}
	if cfg.ExtractorProvider == "" {
		cfg.ExtractorProvider = ExtractorSECAPI
	}
	if cfg.VertexAIRegion == "" {
		cfg.VertexAIRegion = "us-central1"
	}
	if cfg.WorkflowLocation == "" {
		cfg.WorkflowLocation = "us-central1"
	}
	if cfg.DisplayLimit == 0 {
		cfg.DisplayLimit = 500
	}
	if cfg.ExtractionConcurrency == 0 {
		cfg.ExtractionConcurrency = 1
	}
	if cfg.SectionTimeout == 0 {
		cfg.SectionTimeout = 90 * time.Second
	}
	if cfg.CommitTimeout == 0 {
		cfg.CommitTimeout = 30 * time.Second
	}
	if len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = []string{"sec.gov", "www.sec.gov"}
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID must be set for the firestore store backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	switch c.ExtractorProvider {
	case ExtractorSECAPI:
		if c.SECAPIKey == "" {
			return fmt.Errorf("SEC_API_KEY must be set for the secapi extractor")
		}
	case ExtractorVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID must be set for the vertex extractor")
		}
	default:
		return fmt.Errorf("unknown extractor provider %q", c.ExtractorProvider)
	}

	if c.WorkflowID != "" && c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID must be set when WORKFLOW_ID is set")
	}
	if c.DisplayLimit < 0 {
		return fmt.Errorf("display_limit must not be negative")
	}
	if c.ExtractionConcurrency < 1 {
		return fmt.Errorf("extraction_concurrency must be at least 1")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
