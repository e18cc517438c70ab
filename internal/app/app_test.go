package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lllllllleong/secfilingflow/internal/config"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/Lllllllleong/secfilingflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryStoreWithSECAPI(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte("ITEM 1A. RISK FACTORS\nOur business is subject to risks."))
	}))
	defer provider.Close()

	cfg := &config.Config{
		StoreBackend:          config.StoreMemory,
		ExtractorProvider:     config.ExtractorSECAPI,
		SECAPIKey:             "test-key",
		SECAPIBaseURL:         provider.URL,
		DisplayLimit:          20,
		ExtractionConcurrency: 2,
		AllowedHosts:          []string{"www.sec.gov"},
		Port:                  8080,
	}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &store.MemoryStore{}, a.Store)

	body := `{"filing_url":"https://www.sec.gov/Archives/acme-10k.htm","sections":["1A"]}`
	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Saved)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "ITEM 1A. RISK FACTOR...", resp.Results[0].Content)

	rec = httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `secscraper_session_commits_total{result="committed"} 1`)
}

func TestNew_InvalidExtractorSettings(t *testing.T) {
	cfg := &config.Config{
		StoreBackend:      config.StoreMemory,
		ExtractorProvider: config.ExtractorSECAPI,
	}
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sec-api key")
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	a := &App{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return nil },
	}}
	require.NoError(t, a.Close())
	assert.Equal(t, []int{2, 1}, order)
	require.NoError(t, a.Close(), "second close is a no-op")
}
