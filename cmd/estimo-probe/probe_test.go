package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estimo-immo/estimo-go/internal/logging"
	"github.com/estimo-immo/estimo-go/internal/store"
	"github.com/estimo-immo/estimo-go/pkg/estimo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProbeClient(t *testing.T, handler http.HandlerFunc) *estimo.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	retry := estimo.DefaultRetryPolicy()
	retry.BaseDelay = time.Millisecond

	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), &estimo.Credential{Token: "tok"}))

	client, err := estimo.NewClient(&estimo.ClientOptions{
		BaseURL:     server.URL,
		Store:       st,
		Navigator:   estimo.NoopNavigator{},
		RetryPolicy: retry,
	})
	require.NoError(t, err)
	return client
}

func TestProber_Run(t *testing.T) {
	client := newProbeClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/api/analysis/capex":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	var buf bytes.Buffer
	prober := NewProber(client, logging.NewWithWriter(&buf, "debug"))
	report := prober.Run(context.Background(), []string{"health", "capex", "timeline", "bogus"})

	assert.Equal(t, 4, report.TotalChecks)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 3, report.Failed)
	assert.InDelta(t, 25.0, report.SuccessRate, 0.001)

	byName := map[string]ProbeResult{}
	for _, r := range report.Results {
		byName[r.Check] = r
	}

	assert.True(t, byName["health"].Passed)

	capex := byName["capex"]
	assert.Equal(t, string(estimo.KindRetriesExhausted), capex.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, capex.StatusCode)
	assert.Equal(t, 3, capex.Retries)

	timeline := byName["timeline"]
	assert.Equal(t, string(estimo.KindClientError), timeline.Kind)
	assert.Equal(t, "Ressource introuvable.", timeline.Message)

	assert.Contains(t, byName["bogus"].Error, "unknown check")
}

func TestProber_StopsWhenCancelled(t *testing.T) {
	client := newProbeClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	report := NewProber(client, logging.NewWithWriter(&buf, "info")).Run(ctx, []string{"health", "health"})
	assert.Equal(t, 0, report.TotalChecks)
	assert.Zero(t, report.SuccessRate)
}
