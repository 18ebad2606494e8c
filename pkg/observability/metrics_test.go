package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_CountWizardEvents(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics()
	e := wizard.NewEngine(wizard.WithLifecycleHooks(m.Hooks()))

	s := e.Start(ctx, "s")
	_, err := e.Next(ctx, s)
	require.Error(t, err)

	s, err = e.Update(ctx, s, domain.FieldTrustName, "T")
	require.NoError(t, err)
	_, err = e.Next(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry, "livingtrust_wizard_validation_blocked_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry, "livingtrust_wizard_step_visits_total"), "step1 and step2")
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	m := observability.NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/trusts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/trusts/"+id, nil))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry, "livingtrust_http_requests_total"), "one series for all ids")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/trusts/{id}"`)
}
