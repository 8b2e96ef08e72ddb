package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitMeterProvider_ServesMetrics(t *testing.T) {
	handler, shutdown, err := InitMeterProvider("calcio-stop-test")
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	counter, err := otel.Meter("telemetry_test").Int64Counter("test_events_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_events")
}
