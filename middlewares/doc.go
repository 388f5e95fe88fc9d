// Package middlewares provides ready-made stages for the middleware client
// pipeline and a config-driven builder that assembles them.
//
// Every stage is safe for concurrent use. Stages that only apply to some
// requests are wrapped by the builder in a conditional decorator:
//
//	mws, err := middlewares.Build(middlewares.Config{
//	    Auth: middlewares.AuthStageConfig{
//	        Stage: middlewares.Stage{Enabled: true, Match: middlewares.Match{Hosts: []string{"api.example.com"}}},
//	        Type:  "bearer",
//	        Token: token,
//	    },
//	}, log)
//	client := middleware.NewClientBuilder(nil).WithAll(mws...).Build()
package middlewares

// Stage names used in errors, logs and span attributes.
const (
	StageRecovery       = "recovery"
	StageRequestID      = "request_id"
	StageLogging        = "logging"
	StageTracing        = "tracing"
	StageMetrics        = "metrics"
	StageHeaders        = "headers"
	StageAuth           = "auth"
	StageJWT            = "jwt"
	StageCache          = "cache"
	StageRateLimit      = "rate_limit"
	StageBulkhead       = "bulkhead"
	StageCircuitBreaker = "circuit_breaker"
)
