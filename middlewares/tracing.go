package middlewares

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/observability"
)

// TracingConfig configures the tracing stage. Zero values use the global
// OpenTelemetry provider and propagator.
type TracingConfig struct {
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
	// SpanName names the client span. Defaults to the request method.
	SpanName func(*http.Request) string
}

// Tracing returns a stage that wraps the rest of the chain in a client span
// and injects the trace context into the outgoing headers.
func Tracing(cfg TracingConfig) middleware.Middleware {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	prop := cfg.Propagator
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}
	spanName := cfg.SpanName
	if spanName == nil {
		spanName = defaultSpanName
	}
	tracer := tp.Tracer(observability.InstrumentationName)

	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
		ctx, span := tracer.Start(req.Context(), spanName(req),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(methodOf(req)),
				semconv.URLFull(req.URL.Redacted()),
				semconv.ServerAddress(req.URL.Hostname()),
			),
		)
		defer span.End()

		if id, ok := middleware.Get[RequestIDValue](ext); ok {
			span.SetAttributes(attribute.String(observability.AttrRequestID, string(id)))
		}

		traced := req.Clone(ctx)
		prop.Inject(ctx, propagation.HeaderCarrier(traced.Header))

		resp, err := next.Run(traced, ext)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return resp, err
		}
		if resp != nil {
			span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
			if resp.StatusCode >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
			}
			if resp.Header.Get(HeaderCache) == "HIT" {
				span.SetAttributes(attribute.Bool(observability.AttrCacheHit, true))
			}
		}
		return resp, err
	})
}

func defaultSpanName(req *http.Request) string {
	return methodOf(req)
}

func methodOf(req *http.Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return req.Method
}
