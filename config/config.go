package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/reqmw/logger"
	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/middlewares"
	"github.com/kbukum/reqmw/validation"
	"github.com/kbukum/reqmw/version"
)

// ClientConfig configures the underlying *http.Client.
type ClientConfig struct {
	// Timeout bounds a whole request including the body read. 0 means none.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// MaxIdleConnsPerHost caps idle keep-alive connections per host.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host" validate:"gte=0"`
	// IdleConnTimeout closes idle connections after this long.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout" validate:"gte=0"`
}

// HTTPClient returns a new *http.Client with these settings on a clone of the
// default transport.
func (c ClientConfig) HTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = c.MaxIdleConnsPerHost
	}
	if c.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = c.IdleConnTimeout
	}
	return &http.Client{Timeout: c.Timeout, Transport: transport}
}

// Config is the configuration of one client pipeline. Secrets are usually
// supplied through the environment, e.g. MIDDLEWARES_AUTH_TOKEN.
//
// Example config.yml:
//
//	name: billing-client
//	environment: production
//	client:
//	  timeout: 10s
//	logging:
//	  level: info
//	  format: json
//	middlewares:
//	  request_id:
//	    enabled: true
//	  auth:
//	    enabled: true
//	    type: bearer
//	    match:
//	      hosts: [api.example.com]
type Config struct {
	Name        string             `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string             `yaml:"environment" mapstructure:"environment"`
	Version     string             `yaml:"version" mapstructure:"version"`
	Debug       bool               `yaml:"debug" mapstructure:"debug"`
	Client      ClientConfig       `yaml:"client" mapstructure:"client"`
	Logging     logger.Config      `yaml:"logging" mapstructure:"logging"`
	Middlewares middlewares.Config `yaml:"middlewares" mapstructure:"middlewares"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.Version == "" {
		c.Version = version.GetShortVersion()
	}
	if c.Middlewares.Headers.Enabled && !hasHeader(c.Middlewares.Headers.Values, "User-Agent") {
		if c.Middlewares.Headers.Values == nil {
			c.Middlewares.Headers.Values = map[string]string{}
		}
		c.Middlewares.Headers.Values["User-Agent"] = version.UserAgent(c.Name, c.Version)
	}
	c.Logging.ApplyDefaults()
	c.Middlewares.ApplyDefaults()
}

// hasHeader reports whether values sets name. Viper lowercases map keys, so
// the comparison ignores case.
func hasHeader(values map[string]string, name string) bool {
	for k := range values {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

var environments = []string{"development", "staging", "production"}

// Validate reports every invalid field of the configuration, keyed by its
// YAML path.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	err := validation.New().
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, environments).
		Merge("logging", c.Logging.Validate()).
		Merge("middlewares", c.Middlewares.Validate()).
		Validate()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewClient builds the pipeline described by the configuration. A nil logger
// is created from the logging section.
func (c *Config) NewClient(log *logger.Logger) (*middleware.Client, error) {
	if log == nil {
		log = logger.New(&c.Logging, c.Name)
	}
	mws, err := middlewares.Build(c.Middlewares, log)
	if err != nil {
		return nil, err
	}
	return middleware.NewClientBuilder(c.Client.HTTPClient()).WithAll(mws...).Build(), nil
}

// Load reads the configuration for serviceName, applies defaults and
// validates it.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
