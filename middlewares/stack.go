package middlewares

import (
	"fmt"

	"github.com/kbukum/reqmw/conditional"
	"github.com/kbukum/reqmw/logger"
	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/observability"
	"github.com/kbukum/reqmw/resilience"
	"github.com/kbukum/reqmw/validation"
)

// Match selects the requests a stage applies to. Every non-empty list must
// match; an empty Match applies the stage to all requests.
type Match struct {
	Methods      []string `yaml:"methods" mapstructure:"methods"`
	Hosts        []string `yaml:"hosts" mapstructure:"hosts"`
	PathPrefixes []string `yaml:"path_prefixes" mapstructure:"path_prefixes"`
	Schemes      []string `yaml:"schemes" mapstructure:"schemes"`
	// Headers lists header names that must all be present.
	Headers []string `yaml:"headers" mapstructure:"headers"`
}

// IsZero reports whether the match selects every request.
func (m Match) IsZero() bool {
	return len(m.Methods) == 0 && len(m.Hosts) == 0 && len(m.PathPrefixes) == 0 &&
		len(m.Schemes) == 0 && len(m.Headers) == 0
}

// Condition converts the match into a request condition.
func (m Match) Condition() conditional.Condition {
	var conds []conditional.Condition
	if len(m.Methods) > 0 {
		conds = append(conds, conditional.MethodIs(m.Methods...))
	}
	if len(m.Hosts) > 0 {
		conds = append(conds, conditional.HostIs(m.Hosts...))
	}
	if len(m.PathPrefixes) > 0 {
		conds = append(conds, conditional.PathPrefix(m.PathPrefixes...))
	}
	if len(m.Schemes) > 0 {
		conds = append(conds, conditional.SchemeIs(m.Schemes...))
	}
	for _, h := range m.Headers {
		conds = append(conds, conditional.HeaderPresent(h))
	}
	return conditional.All(conds...)
}

// Stage holds the settings shared by every stage section.
type Stage struct {
	Enabled bool  `yaml:"enabled" mapstructure:"enabled"`
	Match   Match `yaml:"match" mapstructure:"match"`
}

// HeadersStageConfig configures default request headers.
type HeadersStageConfig struct {
	Stage  `yaml:",inline" mapstructure:",squash"`
	Values map[string]string `yaml:"values" mapstructure:"values"`
}

// AuthStageConfig configures static credentials.
type AuthStageConfig struct {
	Stage    `yaml:",inline" mapstructure:",squash"`
	Type     string `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=bearer basic api_key"`
	Token    string `yaml:"token" mapstructure:"token"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Key      string `yaml:"key" mapstructure:"key"`
	In       string `yaml:"in" mapstructure:"in" validate:"omitempty,oneof=header query"`
	Name     string `yaml:"name" mapstructure:"name"`
}

// AuthConfig converts the section into an AuthConfig.
func (c AuthStageConfig) AuthConfig() *AuthConfig {
	return &AuthConfig{
		Type:     ParseAuthType(c.Type),
		Token:    c.Token,
		Username: c.Username,
		Password: c.Password,
		Key:      c.Key,
		In:       c.In,
		Name:     c.Name,
	}
}

// JWTStageConfig configures per-request JWT signing.
type JWTStageConfig struct {
	Stage     `yaml:",inline" mapstructure:",squash"`
	JWTConfig `yaml:",inline" mapstructure:",squash"`
}

// CacheStageConfig configures the response cache.
type CacheStageConfig struct {
	Stage       `yaml:",inline" mapstructure:",squash"`
	CacheConfig `yaml:",inline" mapstructure:",squash"`
}

// RateLimitStageConfig configures client-side rate limiting.
type RateLimitStageConfig struct {
	Stage           `yaml:",inline" mapstructure:",squash"`
	RateLimitConfig `yaml:",inline" mapstructure:",squash"`
}

// BulkheadStageConfig configures the concurrency cap.
type BulkheadStageConfig struct {
	Stage                     `yaml:",inline" mapstructure:",squash"`
	resilience.BulkheadConfig `yaml:",inline" mapstructure:",squash"`
}

// CircuitBreakerStageConfig configures the circuit breaker.
type CircuitBreakerStageConfig struct {
	Stage                           `yaml:",inline" mapstructure:",squash"`
	resilience.CircuitBreakerConfig `yaml:",inline" mapstructure:",squash"`
}

// Config describes the whole pipeline. Sections are listed in the order the
// stages run.
type Config struct {
	Recovery       Stage                     `yaml:"recovery" mapstructure:"recovery"`
	RequestID      Stage                     `yaml:"request_id" mapstructure:"request_id"`
	Logging        Stage                     `yaml:"logging" mapstructure:"logging"`
	Tracing        Stage                     `yaml:"tracing" mapstructure:"tracing"`
	Metrics        Stage                     `yaml:"metrics" mapstructure:"metrics"`
	Headers        HeadersStageConfig        `yaml:"headers" mapstructure:"headers"`
	Auth           AuthStageConfig           `yaml:"auth" mapstructure:"auth"`
	JWT            JWTStageConfig            `yaml:"jwt" mapstructure:"jwt"`
	Cache          CacheStageConfig          `yaml:"cache" mapstructure:"cache"`
	RateLimit      RateLimitStageConfig      `yaml:"rate_limit" mapstructure:"rate_limit"`
	Bulkhead       BulkheadStageConfig       `yaml:"bulkhead" mapstructure:"bulkhead"`
	CircuitBreaker CircuitBreakerStageConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// ApplyDefaults fills unset fields of enabled sections.
func (c *Config) ApplyDefaults() {
	if c.JWT.Enabled {
		c.JWT.JWTConfig.ApplyDefaults()
	}
	if c.Cache.Enabled {
		c.Cache.CacheConfig.ApplyDefaults()
	}
	if c.RateLimit.Enabled && c.RateLimit.Name == "" {
		c.RateLimit.Name = StageRateLimit
	}
	if c.Bulkhead.Enabled && c.Bulkhead.Name == "" {
		c.Bulkhead.Name = StageBulkhead
	}
	if c.CircuitBreaker.Enabled && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = StageCircuitBreaker
	}
}

// Validate checks struct tags and the credentials each enabled stage needs.
func (c *Config) Validate() error {
	v := validation.New().Merge("", validation.Validate(c))
	if c.Auth.Enabled {
		v.Required("auth.type", c.Auth.Type)
		switch c.Auth.Type {
		case "bearer":
			v.Required("auth.token", c.Auth.Token)
		case "basic":
			v.Required("auth.username", c.Auth.Username)
		case "api_key":
			v.Required("auth.key", c.Auth.Key)
		}
	}
	if c.JWT.Enabled {
		v.Required("jwt.secret", c.JWT.Secret)
	}
	return v.Validate()
}

const component = "middlewares"

// Build validates cfg and returns the enabled stages in execution order.
// Stages with a non-empty Match are wrapped in a conditional decorator. A nil
// logger uses the one registered for "middlewares" in the logger package.
func Build(cfg Config, log *logger.Logger) ([]middleware.Middleware, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("middlewares: %w", err)
	}
	if log == nil {
		log = logger.Get(component)
	} else {
		log = log.WithComponent(component)
	}

	var out []middleware.Middleware
	add := func(name string, stage Stage, m middleware.Middleware) {
		if !stage.Enabled {
			return
		}
		gated := !stage.Match.IsZero()
		if gated {
			m = conditional.New(m, stage.Match.Condition())
		}
		out = append(out, m)
		log.Debug("stage enabled", logger.Fields(logger.FieldStage, name, "conditional", gated))
	}

	add(StageRecovery, cfg.Recovery, Recovery(log))
	add(StageRequestID, cfg.RequestID, RequestID())
	add(StageLogging, cfg.Logging, Logging(log))
	add(StageTracing, cfg.Tracing, Tracing(TracingConfig{}))

	if cfg.Metrics.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return nil, fmt.Errorf("middlewares: %w", err)
		}
		add(StageMetrics, cfg.Metrics, Metrics(metrics))
	}

	if cfg.Headers.Enabled {
		headers, err := Headers(cfg.Headers.Values)
		if err != nil {
			return nil, err
		}
		add(StageHeaders, cfg.Headers.Stage, headers)
	}

	add(StageAuth, cfg.Auth.Stage, Auth(cfg.Auth.AuthConfig()))

	if cfg.JWT.Enabled {
		signer, err := JWTBearer(cfg.JWT.JWTConfig)
		if err != nil {
			return nil, err
		}
		add(StageJWT, cfg.JWT.Stage, signer)
	}

	if cfg.Cache.Enabled {
		add(StageCache, cfg.Cache.Stage, NewCache(cfg.Cache.CacheConfig))
	}

	if cfg.RateLimit.Enabled {
		rl := cfg.RateLimit.RateLimitConfig
		rl.OnLimit = func(name string) {
			log.Warn("rate limit exceeded", logger.Fields(logger.FieldStage, name))
		}
		add(StageRateLimit, cfg.RateLimit.Stage, RateLimit(rl))
	}

	if cfg.Bulkhead.Enabled {
		bh := cfg.Bulkhead.BulkheadConfig
		bh.OnReject = func(name string) {
			log.Warn("bulkhead rejected request", logger.Fields(logger.FieldStage, name))
		}
		add(StageBulkhead, cfg.Bulkhead.Stage, NewBulkhead(bh))
	}

	if cfg.CircuitBreaker.Enabled {
		cb := cfg.CircuitBreaker.CircuitBreakerConfig
		cb.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed", logger.Fields(
				logger.FieldStage, name, "from", from.String(), "to", to.String(),
			))
		}
		add(StageCircuitBreaker, cfg.CircuitBreaker.Stage, NewCircuitBreaker(cb))
	}

	return out, nil
}
