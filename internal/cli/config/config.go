package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/traitenum/traitenum/internal/store"
	"github.com/traitenum/traitenum/internal/tooling/build"
	"github.com/traitenum/traitenum/internal/watch"
)

// FileName is the configuration file looked up in the project root, with
// a .yml or .yaml extension
const FileName = "traitenum"

// EnvPrefix prefixes environment overrides such as TRAITENUM_STORE_KIND
const EnvPrefix = "TRAITENUM"

// Config represents the traitenum project configuration
type Config struct {
	// Root is the directory source patterns are relative to
	Root    string        `mapstructure:"root"`
	Sources []string      `mapstructure:"sources"`
	Exclude []string      `mapstructure:"exclude"`
	Package string        `mapstructure:"package"`
	Jobs    int           `mapstructure:"jobs"`
	Store   StoreConfig   `mapstructure:"store"`
	Codegen CodegenConfig `mapstructure:"codegen"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// StoreConfig selects the model store
type StoreConfig struct {
	Kind  string      `mapstructure:"kind"`
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents redis store configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CodegenConfig represents code generation configuration
type CodegenConfig struct {
	Compress bool `mapstructure:"compress"`
	// Imports maps package qualifiers to import paths
	Imports        map[string]string `mapstructure:"imports"`
	ResolveImports bool              `mapstructure:"resolve_imports"`
	// OmitModel leaves the model constant out of generated interfaces
	OmitModel bool `mapstructure:"omit_model"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

func setDefaults(v *viper.Viper) {
	defaults := build.DefaultBuildOptions()
	storeDefaults := store.DefaultConfig()

	v.SetDefault("root", ".")
	v.SetDefault("sources", defaults.Sources)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("package", "")
	v.SetDefault("jobs", runtime.NumCPU())
	v.SetDefault("store.kind", string(storeDefaults.Kind))
	v.SetDefault("store.path", storeDefaults.Path)
	v.SetDefault("store.redis.addr", storeDefaults.Redis.Addr)
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", storeDefaults.Redis.Prefix)
	v.SetDefault("codegen.compress", defaults.Compress)
	v.SetDefault("codegen.imports", map[string]string{})
	v.SetDefault("codegen.resolve_imports", false)
	v.SetDefault("codegen.omit_model", false)
	v.SetDefault("watch.debounce", watch.DefaultDebounce)
}

// Load loads the configuration from traitenum.yml or traitenum.yaml in the
// current directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration of the project in dir. Relative root and
// store paths are resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !filepath.IsAbs(config.Root) {
		config.Root = filepath.Join(dir, config.Root)
	}
	if config.Store.Kind != string(store.KindRedis) && !filepath.IsAbs(config.Store.Path) {
		config.Store.Path = filepath.Join(config.Root, config.Store.Path)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if the current directory holds a configuration file
func InProject() bool {
	_, err := findConfig(".")
	return err == nil
}

// GetProjectRoot finds the closest directory at or above the current one
// holding a configuration file
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := findConfig(dir); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a traitenum project (no %s.yml found)", FileName)
		}
		dir = parent
	}
}

func findConfig(dir string) (string, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(dir, FileName+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("sources must list at least one pattern")
	}
	for _, pattern := range append(append([]string{}, cfg.Sources...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got: %d", cfg.Jobs)
	}

	switch store.Kind(cfg.Store.Kind) {
	case store.KindFile, store.KindSQLite:
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s store", cfg.Store.Kind)
		}
	case store.KindRedis:
		if cfg.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("store.kind must be one of file, sqlite, redis, got: %s", cfg.Store.Kind)
	}

	for qualifier, path := range cfg.Codegen.Imports {
		if path == "" {
			return fmt.Errorf("codegen.imports.%s has no import path", qualifier)
		}
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}

// BuildOptions returns the build system options the configuration describes
func (c *Config) BuildOptions() *build.BuildOptions {
	jobs := c.Jobs
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}
	return &build.BuildOptions{
		Root:           c.Root,
		Sources:        c.Sources,
		Exclude:        c.Exclude,
		Package:        c.Package,
		Imports:        c.Codegen.Imports,
		ResolveImports: c.Codegen.ResolveImports,
		Compress:       c.Codegen.Compress,
		OmitModel:      c.Codegen.OmitModel,
		MaxJobs:        jobs,
	}
}

// StoreConfig returns the model store configuration
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Kind: store.Kind(c.Store.Kind),
		Path: c.Store.Path,
		Redis: store.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
	}
}

// WatchOptions returns the watch mode options
func (c *Config) WatchOptions() watch.Options {
	return watch.Options{
		Root:     c.Root,
		Sources:  c.Sources,
		Exclude:  c.Exclude,
		Debounce: c.Watch.Debounce,
	}
}
