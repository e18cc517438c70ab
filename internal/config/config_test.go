package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PROJECT_ID", "STORE_BACKEND", "FILINGS_COLLECTION", "CONTENT_BUCKET",
		"CONTENT_INLINE_LIMIT", "EXTRACTOR_PROVIDER", "SEC_API_KEY", "SEC_API_BASE_URL",
		"VERTEX_AI_REGION", "VERTEX_MODEL", "WORKFLOW_ID", "WORKFLOW_LOCATION", "DISPLAY_LIMIT",
		"EXTRACTION_CONCURRENCY", "SECTION_TIMEOUT", "COMMIT_TIMEOUT", "ALLOWED_HOSTS", "PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SEC_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, "filings", cfg.FilingsCollection)
	assert.Equal(t, 900_000, cfg.ContentInlineLimit)
	assert.Equal(t, ExtractorSECAPI, cfg.ExtractorProvider)
	assert.Equal(t, "us-central1", cfg.VertexAIRegion)
	assert.Equal(t, "us-central1", cfg.WorkflowLocation)
	assert.Equal(t, 500, cfg.DisplayLimit)
	assert.Equal(t, 1, cfg.ExtractionConcurrency)
	assert.Equal(t, 90*time.Second, cfg.SectionTimeout)
	assert.Equal(t, 30*time.Second, cfg.CommitTimeout)
	assert.Equal(t, []string{"sec.gov", "www.sec.gov"}, cfg.AllowedHosts)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_ID", "demo-project")
	t.Setenv("EXTRACTOR_PROVIDER", "vertex")
	t.Setenv("VERTEX_MODEL", "gemini-test")
	t.Setenv("EXTRACTION_CONCURRENCY", "4")
	t.Setenv("SECTION_TIMEOUT", "15s")
	t.Setenv("ALLOWED_HOSTS", "sec.gov, efts.sec.gov")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo-project", cfg.ProjectID)
	assert.Equal(t, StoreFirestore, cfg.StoreBackend)
	assert.Equal(t, ExtractorVertex, cfg.ExtractorProvider)
	assert.Equal(t, "gemini-test", cfg.VertexModel)
	assert.Equal(t, 4, cfg.ExtractionConcurrency)
	assert.Equal(t, 15*time.Second, cfg.SectionTimeout)
	assert.Equal(t, []string{"sec.gov", "efts.sec.gov"}, cfg.AllowedHosts)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadWithFile_EnvironmentOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `project_id: yaml-project
store_backend: memory
sec_api_key: yaml-key
display_limit: 120
allowed_hosts:
  - sec.gov
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
	t.Setenv("DISPLAY_LIMIT", "250")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-project", cfg.ProjectID)
	assert.Equal(t, "yaml-key", cfg.SECAPIKey)
	assert.Equal(t, 250, cfg.DisplayLimit)
	assert.Equal(t, []string{"sec.gov"}, cfg.AllowedHosts)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{ProjectID: "p", SECAPIKey: "k"}
		applyDefaults(&c)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "firestore without project", mutate: func(c *Config) { c.ProjectID = "" }, wantErr: "PROJECT_ID"},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "redis" }, wantErr: "unknown store backend"},
		{name: "secapi without key", mutate: func(c *Config) { c.SECAPIKey = "" }, wantErr: "SEC_API_KEY"},
		{name: "unknown extractor", mutate: func(c *Config) { c.ExtractorProvider = "scraper" }, wantErr: "unknown extractor provider"},
		{
			name: "workflow without project",
			mutate: func(c *Config) {
				c.StoreBackend = StoreMemory
				c.ProjectID = ""
				c.WorkflowID = "wf"
			},
			wantErr: "WORKFLOW_ID",
		},
		{name: "zero concurrency", mutate: func(c *Config) { c.ExtractionConcurrency = 0 }, wantErr: "extraction_concurrency"},
		{name: "negative display limit", mutate: func(c *Config) { c.DisplayLimit = -1 }, wantErr: "display_limit"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	} {
		c := Config{LogLevel: level}
		assert.Equal(t, want, c.SlogLevel(), level)
	}
}
