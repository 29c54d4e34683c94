/*
Package tracing records request spans and carries trace context to the
services the backend calls.

# Overview

Each inbound HTTP request gets a span. A trace ID arriving in X-Trace-ID is
continued, otherwise a new one is minted. Outbound calls (the weather
provider) copy the current trace context into their request headers so one
trace covers the whole flow.

Finished spans go through a buffered channel to a single collector that
logs them at debug level. When the buffer is full spans are dropped rather
than slowing requests.

# Usage

	tracer := tracing.New("webtop", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "catalog.load")
	defer tracer.End(span)
	span.SetTag("path", path)

	// outbound
	tracing.Inject(ctx, req.Header)

# Headers

  - X-Trace-ID: identifies the entire request flow
  - X-Span-ID: identifies the calling operation
*/
package tracing
