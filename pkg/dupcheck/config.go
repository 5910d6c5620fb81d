package dupcheck

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CacheConfig contains configuration for the normalization cache.
type CacheConfig struct {
	// Backend is the cache backend type ("memory", "null" or "none")
	Backend string `json:"backend" yaml:"backend" validate:"omitempty,oneof=memory none null"`
	// TTL is the default time-to-live in seconds
	TTL int `json:"ttl" yaml:"ttl" validate:"gte=0"`
	// MaxSize is the maximum number of entries for memory cache
	MaxSize int `json:"max_size" yaml:"max_size" validate:"gte=0,required_if=Backend memory"`
}

// DefaultCacheConfig returns a default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Backend: "none",
		TTL:     3600,
		MaxSize: 10000,
	}
}

// Config is the main configuration for the Detector.
type Config struct {
	// MaxResults is the number of matches kept after ranking
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=1"`
	// ParallelThreshold is the pool size from which scoring fans out (0 = never)
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold" validate:"gte=0"`
	// Workers is the maximum number of concurrent scoring goroutines
	Workers int `json:"workers" yaml:"workers" validate:"gte=1"`
	// FoldDiacritics maps accented letters to their base letter instead of dropping them
	FoldDiacritics bool `json:"fold_diacritics" yaml:"fold_diacritics"`
	// Cache is the normalization cache configuration
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Logger receives detection diagnostics
	Logger *zap.Logger `json:"-" yaml:"-" validate:"-"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:        5,
		ParallelThreshold: 2000,
		Workers:           8,
		Cache:             DefaultCacheConfig(),
	}
}

// Validate checks the configuration and reports the first problem as a *ConfigError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConfigError{
			Field:   fe.Namespace(),
			Details: fmt.Sprintf("failed '%s' rule (param '%s'), got '%v'", fe.Tag(), fe.Param(), fe.Value()),
		}
	}
	return &ConfigError{Details: err.Error()}
}

// LoadConfigFile reads a YAML configuration file on top of DefaultConfig.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, &ConfigError{Details: fmt.Sprintf("reading %s: %v", path, err)}
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, &ConfigError{Details: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	return config, config.Validate()
}

// Option is a functional option for configuring the Detector.
type Option func(*Config)

// WithConfig replaces the whole configuration, keeping any logger already set.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		logger := c.Logger
		*c = cfg
		if c.Logger == nil {
			c.Logger = logger
		}
	}
}

// WithMaxResults sets how many matches are kept after ranking.
func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithParallelism enables concurrent scoring for pools of at least threshold records.
func WithParallelism(threshold, workers int) Option {
	return func(c *Config) {
		c.ParallelThreshold = threshold
		c.Workers = workers
	}
}

// WithDiacriticFolding folds accented letters before comparison.
func WithDiacriticFolding() Option {
	return func(c *Config) {
		c.FoldDiacritics = true
	}
}

// WithCache configures the normalization cache backend.
func WithCache(backend string, ttl, maxSize int) Option {
	return func(c *Config) {
		c.Cache.Backend = backend
		c.Cache.TTL = ttl
		c.Cache.MaxSize = maxSize
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
