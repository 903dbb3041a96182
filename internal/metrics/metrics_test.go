package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	rec := New(false)
	_, ok := rec.(Noop)
	assert.True(t, ok)

	// Must not panic
	rec.ObserveSync("musicians", OutcomeRefreshed, time.Millisecond)
	rec.SetCachedRows("musicians", 3)
	rec.ObserveEnrichment(1, 1, false)

	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPrometheus_RecordsObservations(t *testing.T) {
	p := NewPrometheus(prometheus.NewRegistry())

	p.ObserveSync("musicians", OutcomeRefreshed, 20*time.Millisecond)
	p.ObserveSync("musicians", OutcomeFresh, 0)
	p.ObserveSync("musicians", OutcomeFresh, 0)
	p.ObserveSync("collectors", OutcomeRemoteError, time.Second)
	p.SetCachedRows("musicians", 12)
	p.ObserveEnrichment(2, 1, false)
	p.ObserveEnrichment(0, 0, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.syncTotal.WithLabelValues("musicians", OutcomeRefreshed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.syncTotal.WithLabelValues("musicians", OutcomeFresh)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.syncTotal.WithLabelValues("collectors", OutcomeRemoteError)))
	assert.Equal(t, 12.0, testutil.ToFloat64(p.cachedRows.WithLabelValues("musicians")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.enrichTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.enrichTotal.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.placeholders))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.performerMatches))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus(prometheus.NewRegistry())
	p.SetCachedRows("collectors", 4)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `vinilo_cached_rows{entity="collectors"} 4`)
}
