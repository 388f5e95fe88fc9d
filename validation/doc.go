// Package validation provides configuration validation.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their mapstructure key, so errors point at the YAML key that was wrong:
//
//	type RateLimitConfig struct {
//	    Rate float64 `mapstructure:"rate" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg) // "validation failed: rate: must be greater than 0"
//
// Programmatic checks collect errors until Validate is called:
//
//	v := validation.New()
//	v.Required("auth.token", token).OneOf("auth.type", typ, []string{"bearer", "basic"})
//	err := v.Validate()
//
// Merge folds a nested config's errors in under its key, so a parent reports
// "logging.level" rather than "level".
package validation
