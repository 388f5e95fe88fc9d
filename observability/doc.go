// Package observability provides OpenTelemetry tracing and metrics setup for
// outgoing HTTP client requests.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("billing")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mcfg := observability.DefaultMeterConfig("billing")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("billing"))
//	metrics.RecordRequestEnd(ctx, "api.example.com", "GET", 200, duration)
package observability
