package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestGinMiddlewareSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { tp.Shutdown(context.Background()) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware("dashboard"))
	r.POST("/records/:id/delete", func(c *gin.Context) {
		TagSession(c.Request.Context(), "0d6f3c2e")
		assert.NotEmpty(t, TraceID(c.Request.Context()))
		c.Status(http.StatusSeeOther)
	})
	r.GET("/api/charts", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/records/7/delete", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/charts", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	deleted := spans[0]
	assert.Equal(t, "POST /records/:id/delete", deleted.Name())
	assert.Equal(t, trace.SpanKindServer, deleted.SpanKind())
	assert.Equal(t, deleted.SpanContext().TraceID().String(), w.Header().Get(TraceIDHeader))
	attrs := attribute.NewSet(deleted.Attributes()...)
	for key, want := range map[attribute.Key]string{
		"http.route": "/records/:id/delete",
		RoleKey:      "dashboard",
		RecordIDKey:  "7",
		SessionKey:   "0d6f3c2e",
	} {
		v, ok := attrs.Value(key)
		require.True(t, ok, key)
		assert.Equal(t, want, v.AsString())
	}
	assert.Equal(t, codes.Unset, deleted.Status().Code)

	charts := spans[1]
	assert.Equal(t, "GET /api/charts", charts.Name())
	assert.Equal(t, codes.Error, charts.Status().Code)
}

func TestTraceIDWithoutSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TraceID(req.Context()))
}
