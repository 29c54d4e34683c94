package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("webtop", zap.New(core)), logs
}

func TestStartSpanNesting(t *testing.T) {
	tracer, logs := newObservedTracer()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.True(t, strings.HasPrefix(string(root.TraceID), "trace_"))
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))

	child.SetError(errors.New("boom"))
	tracer.End(child)
	tracer.End(root)
	tracer.Close()

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "span completed with error", logs.All()[0].Message)
	assert.Equal(t, "span completed", logs.All()[1].Message)
}

func TestInjectExtract(t *testing.T) {
	ctx := withIDs(context.Background(), "trace_a", "span_b")
	h := http.Header{}
	Inject(ctx, h)
	assert.Equal(t, "trace_a", h.Get(TraceHeader))
	assert.Equal(t, "span_b", h.Get(SpanHeader))

	got := Extract(context.Background(), h)
	assert.Equal(t, TraceID("trace_a"), GetTraceID(got))
	assert.Equal(t, SpanID("span_b"), GetSpanID(got))

	empty := http.Header{}
	Inject(context.Background(), empty)
	assert.Empty(t, empty)
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, logs := newObservedTracer()
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.End(span)
	assert.Equal(t, 0, logs.Len())
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/api/windows/:id", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/windows/w1", nil)
	req.Header.Set(TraceHeader, "trace_upstream")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	tracer.Close()

	assert.Equal(t, TraceID("trace_upstream"), seen)
	assert.Equal(t, "trace_upstream", rec.Header().Get(TraceHeader))
	assert.NotEmpty(t, rec.Header().Get(SpanHeader))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET /api/windows/:id", fields["operation"])
	assert.Equal(t, "204", fields["http.status"])
}
