package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New(nil)
	b := New(nil)

	a.SectionsTotal.WithLabelValues("10-K", OutcomeSuccess).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.SectionsTotal.WithLabelValues("10-K", OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SectionsTotal.WithLabelValues("10-K", OutcomeSuccess)))
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.CommitsTotal.WithLabelValues("committed").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `secscraper_session_commits_total{result="committed"} 1`)
}

func TestObserve(t *testing.T) {
	m := New(nil)
	m.ObserveSection("10-Q", OutcomeMismatch, 2*time.Second)
	m.ObserveCommit(CommitSkipped, 0)
	m.ObserveCommit(CommitCommitted, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SectionsTotal.WithLabelValues("10-Q", OutcomeMismatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitsTotal.WithLabelValues(CommitSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitsTotal.WithLabelValues(CommitCommitted)))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveSection("10-K", OutcomeSuccess, time.Second)
		nilMetrics.ObserveCommit(CommitFailed, time.Second)
	})
}
