package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(span trace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestInstrumentResty(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<html></html>`))
	}))
	defer server.Close()

	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, "test")

	_, err := client.R().SetHeader("Cookie", "SAPISID=secret").Get("/feed/history")
	require.NoError(t, err)
	_, err = client.R().SetBody(map[string]any{"continuation": "c2"}).Post("/youtubei/v1/browse")
	require.NoError(t, err)
	_, err = client.R().Get("/missing")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	_, hasBody := spanAttr(spans[0], "request/body")
	require.False(t, hasBody)
	cookie, ok := spanAttr(spans[0], "request/header: Cookie")
	require.True(t, ok)
	require.Equal(t, "<redacted>", cookie.AsString())

	body, ok := spanAttr(spans[1], "request/body")
	require.True(t, ok)
	require.Equal(t, `{"continuation":"c2"}`, body.AsString())

	require.Equal(t, "Error", spans[2].Status().Code.String())
}
