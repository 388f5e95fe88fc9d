package logger

import (
	"net/http"
	"time"
)

// Field keys shared by every pipeline stage.
const (
	FieldComponent     = "component"
	FieldTraceID       = "trace_id"
	FieldSpanID        = "span_id"
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldStage         = "stage"
	FieldMethod        = "method"
	FieldURL           = "url"
	FieldHost          = "host"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs. Non-string keys
// and a trailing key without a value are dropped.
//
//	log.Warn("rate limited", logger.Fields(logger.FieldStage, "rate_limit"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// RequestFields describes an outgoing request. Credentials in the URL are
// redacted.
func RequestFields(req *http.Request) map[string]interface{} {
	m := map[string]interface{}{FieldMethod: req.Method}
	if req.URL != nil {
		m[FieldURL] = req.URL.Redacted()
		m[FieldHost] = req.URL.Host
	}
	return m
}

// WithOutcome adds the status (when resp is non-nil), the error (when err is
// non-nil) and the elapsed time to fields, allocating a map if fields is nil.
func WithOutcome(fields map[string]interface{}, resp *http.Response, err error, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 3)
	}
	if resp != nil {
		fields[FieldStatus] = resp.StatusCode
	}
	if err != nil {
		fields[FieldError] = err.Error()
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
