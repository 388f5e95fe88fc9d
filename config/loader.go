package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/reqmw/logger"
)

// FileSystem abstracts the file checks the loader performs so tests can run
// without touching disk.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem is the FileSystem backed by the OS.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads path into the process environment. Variables already set
// are not overridden.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// DefaultSearchDirs are the directories searched, in order, when no explicit
// file is given.
var DefaultSearchDirs = []string{".", "config", ".."}

// Resolver locates the config and .env files of a client.
type Resolver struct {
	FileSystem FileSystem
	// Dirs overrides DefaultSearchDirs.
	Dirs []string
}

// ResolvedFiles holds the files a load will read. Empty means none found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths in opts, or searches for
//
//	<name>.yml, <name>.yaml, config.yml, config.yaml
//	.env.<name>, .env
//
// in each search directory. The first directory holding a match wins.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.find(name+".yml", name+".yaml", "config.yml", "config.yaml")
	}
	if files.EnvFile == "" {
		files.EnvFile = r.find(".env."+name, ".env")
	}
	return files
}

func (r *Resolver) find(names ...string) string {
	dirs := r.Dirs
	if len(dirs) == 0 {
		dirs = DefaultSearchDirs
	}
	for _, dir := range dirs {
		for _, n := range names {
			if p := filepath.Join(dir, n); r.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// LoaderConfig collects the options of a load.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix restricts environment binding to variables starting with
	// PREFIX_, which is stripped before mapping to keys.
	EnvPrefix  string
	SearchDirs []string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix binds only variables named PREFIX_<KEY>. Without a prefix
// every variable in the environment is considered.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// WithSearchDirs replaces DefaultSearchDirs for this load.
func WithSearchDirs(dirs ...string) LoaderOption {
	return func(lc *LoaderConfig) { lc.SearchDirs = dirs }
}

// LoadConfig fills cfg from, in increasing precedence: the YAML config file,
// the .env file, and the process environment. Keys follow the mapstructure
// tags of cfg; MIDDLEWARES_RATE_LIMIT_BURST reaches middlewares.rate_limit.burst.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	r := &Resolver{FileSystem: lc.FileSystem, Dirs: lc.SearchDirs}
	return load(name, cfg, r.ResolveFiles(name, lc), lc)
}

func load(name string, cfg interface{}, files ResolvedFiles, lc LoaderConfig) error {
	v := viper.New()

	// A config file that exists but does not parse is an error; a missing one
	// is not.
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", files.ConfigFile, err)
		}
	}

	// .env values land in the process environment, so one binding pass after
	// loading covers both sources.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields("path", files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	bindEnv(v, os.Environ(), lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", name, err)
	}
	return nil
}

// bindEnv sets every key variant of each KEY=value pair on v.
func bindEnv(v *viper.Viper, environ []string, prefix string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found || rest == "" {
				continue
			}
			key = rest
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// maxEnvKeyParts bounds the number of underscore-separated parts for which
// every dot/underscore combination is generated.
const maxEnvKeyParts = 8

// generateEnvKeyVariants returns the config keys an environment variable may
// stand for, treating each underscore as either a nesting dot or part of a
// key name:
//
//	LOGGING_LEVEL -> [logging_level, logging.level]
//	MIDDLEWARES_RATE_LIMIT_BURST -> [..., middlewares.rate_limit.burst, ...]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 || slices.Contains(parts, "") {
		return []string{lowerKey}
	}
	if len(parts) > maxEnvKeyParts {
		return []string{lowerKey, strings.ReplaceAll(lowerKey, "_", ".")}
	}

	gaps := len(parts) - 1
	variants := make([]string, 0, 1<<gaps)
	var b strings.Builder
	for mask := 0; mask < 1<<gaps; mask++ {
		b.Reset()
		b.WriteString(parts[0])
		for i := 1; i < len(parts); i++ {
			if mask&(1<<(i-1)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(parts[i])
		}
		variants = append(variants, b.String())
	}
	return variants
}
