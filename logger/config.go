package logger

import (
	"io"

	"github.com/kbukum/reqmw/validation"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`

	// Writer overrides Output when set. Mostly useful in tests.
	Writer io.Writer `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

var (
	validLevels  = []string{"debug", "info", "warn", "error", "fatal", "trace", "disabled"}
	validFormats = []string{"json", FormatConsole, FormatPretty}
	validOutputs = []string{"stdout", "stderr"}
)

// Validate reports every invalid field. Keys are relative ("level"), so a
// parent config can re-root them.
func (c *Config) Validate() error {
	return validation.New().
		Required("level", c.Level).OneOf("level", c.Level, validLevels).
		Required("format", c.Format).OneOf("format", c.Format, validFormats).
		Required("output", c.Output).OneOf("output", c.Output, validOutputs).
		Validate()
}
