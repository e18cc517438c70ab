package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSECAPIExtractor(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewSECAPIExtractor("", "", nil)
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		e, err := NewSECAPIExtractor("key", "", nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultSECAPIBaseURL, e.baseURL)
		assert.NotNil(t, e.httpClient)
	})
}

func TestSECAPIExtractor_Extract(t *testing.T) {
	const filingURL = "https://www.sec.gov/Archives/edgar/data/1/acme-10k.htm"

	t.Run("sends query and returns body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/extractor", r.URL.Path)
			assert.Equal(t, filingURL, r.URL.Query().Get("url"))
			assert.Equal(t, "1A", r.URL.Query().Get("item"))
			assert.Equal(t, "text", r.URL.Query().Get("type"))
			assert.Equal(t, "secret", r.URL.Query().Get("token"))
			_, _ = w.Write([]byte("ITEM 1A. RISK FACTORS"))
		}))
		defer srv.Close()

		e, err := NewSECAPIExtractor("secret", srv.URL+"/", srv.Client())
		require.NoError(t, err)

		text, err := e.Extract(context.Background(), filingURL, "1A")
		require.NoError(t, err)
		assert.Equal(t, "ITEM 1A. RISK FACTORS", text)
	})

	t.Run("empty body is not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		e, err := NewSECAPIExtractor("secret", srv.URL, srv.Client())
		require.NoError(t, err)

		text, err := e.Extract(context.Background(), filingURL, "9Z")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("non OK status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, strings.Repeat("invalid item ", 50), http.StatusBadRequest)
		}))
		defer srv.Close()

		e, err := NewSECAPIExtractor("secret", srv.URL, srv.Client())
		require.NoError(t, err)

		_, err = e.Extract(context.Background(), filingURL, "9Z")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Less(t, len(err.Error()), 300)
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		e, err := NewSECAPIExtractor("secret", srv.URL, srv.Client())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = e.Extract(ctx, filingURL, "1A")
		assert.Error(t, err)
	})
}
