package transport

import (
	"context"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/trace"

	"sberbank-acquiring/internal/tracer"
)

const spanName = "acquiring.transport.request"

type traced struct {
	inner Transport
}

// Traced wraps every exchange of inner in a span on the global TracerProvider.
func Traced(inner Transport) Transport {
	return &traced{inner: inner}
}

func (t *traced) Request(ctx context.Context, uri, method string, headers http.Header, params url.Values) (string, error) {
	ctx, span := tracer.StartSpan(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			tracer.StringAttr("http.request.method", method),
			tracer.StringAttr("url.full", uri),
			tracer.IntAttr("acquiring.params", len(params)),
		),
	)
	defer span.End()

	body, err := t.inner.Request(ctx, uri, method, headers, params)
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	span.SetAttributes(tracer.IntAttr("http.response.body.size", len(body)))
	tracer.SetOK(span)
	return body, nil
}
