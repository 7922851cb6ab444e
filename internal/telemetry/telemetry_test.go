package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/williampepple1/partsearch/internal/config"
)

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetup_RequiresEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), config.TelemetryConfig{Enabled: true, ServiceName: "partsearch"})
	assert.Error(t, err)
}

func TestSetup_ExportsSpansOverHTTP(t *testing.T) {
	var exports atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			exports.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	tel, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:      true,
		ServiceName:  "partsearch-test",
		HTTPEndpoint: collector.URL + "/v1/traces",
	})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	assert.Same(t, tel.TracerProvider, otel.GetTracerProvider())

	_, span := otel.Tracer("partsearch/test").Start(context.Background(), "search")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
	assert.Equal(t, int32(1), exports.Load())
}
