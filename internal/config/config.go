// Package config provides configuration loading and validation for the
// cofreq pipeline tools. A cofreq.yaml file and COFREQ_* environment
// variables supply defaults; command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cofreq/internal/memplan"
)

// Sentinel validation errors.
var (
	ErrInvalidVerbose    = errors.New("verbosity must be 0, 1, or 2")
	ErrInvalidMinCount   = errors.New("min count must be at least 1")
	ErrInvalidMaxVocab   = errors.New("max vocab must be non-negative")
	ErrInvalidWindowSize = errors.New("window size must be at least 1")
	ErrInvalidMemory     = errors.New("memory limit must be positive")
	ErrInvalidSeed       = errors.New("seed must be non-negative")
)

// Default configuration values. The documented 4.0 GB memory default is
// canonical for both memory-sized stages.
const (
	defaultVerbose      = 2
	defaultMinCount     = 1
	defaultWindowSize   = 15
	defaultMemoryGB     = 4.0
	defaultVocabFile    = "vocab.txt"
	defaultOverflowFile = "overflow"
	defaultTempFile     = "temp_shuffle"
	defaultSeed         = 1
)

// Config holds defaults for every pipeline stage.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Vocab   VocabConfig   `mapstructure:"vocab"   yaml:"vocab"`
	Cooccur CoocConfig    `mapstructure:"cooccur" yaml:"cooccur"`
	Shuffle ShuffleConfig `mapstructure:"shuffle" yaml:"shuffle"`
}

// LoggingConfig holds stderr logging settings shared by all stages.
type LoggingConfig struct {
	// Format selects the slog handler: "text" or "json".
	Format string `mapstructure:"format" yaml:"format"`

	// Verbose is the default verbosity: 0 warnings, 1 summaries, 2 progress.
	Verbose int `mapstructure:"verbose" yaml:"verbose"`
}

// VocabConfig holds vocabulary builder defaults.
type VocabConfig struct {
	MinCount int64 `mapstructure:"min_count" yaml:"min_count"`
	MaxVocab int64 `mapstructure:"max_vocab" yaml:"max_vocab"`
}

// CoocConfig holds co-occurrence accumulator defaults.
type CoocConfig struct {
	VocabFile    string  `mapstructure:"vocab_file"      yaml:"vocab_file"`
	OverflowFile string  `mapstructure:"overflow_file"   yaml:"overflow_file"`
	MemoryBytes  string  `mapstructure:"memory_bytes"    yaml:"memory_bytes"`
	Memory       float64 `mapstructure:"memory"          yaml:"memory"`
	WindowSize   int     `mapstructure:"window_size"     yaml:"window_size"`
	MaxProduct   int64   `mapstructure:"max_product"     yaml:"max_product"`
	Overflow     int64   `mapstructure:"overflow_length" yaml:"overflow_length"`
	Symmetric    bool    `mapstructure:"symmetric"       yaml:"symmetric"`
}

// ShuffleConfig holds shuffler defaults.
type ShuffleConfig struct {
	TempFile    string  `mapstructure:"temp_file"    yaml:"temp_file"`
	MemoryBytes string  `mapstructure:"memory_bytes" yaml:"memory_bytes"`
	Memory      float64 `mapstructure:"memory"       yaml:"memory"`
	ArraySize   int64   `mapstructure:"array_size"   yaml:"array_size"`
	Seed        int64   `mapstructure:"seed"         yaml:"seed"`
}

// Load reads configuration from the given file (or the default search
// paths when empty) and the environment. A missing default config file is
// not an error; an explicitly named one must exist.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("cofreq")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
	}

	viperCfg.SetEnvPrefix("COFREQ")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err := viperCfg.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	err = viperCfg.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.verbose", defaultVerbose)

	v.SetDefault("vocab.min_count", defaultMinCount)
	v.SetDefault("vocab.max_vocab", 0)

	v.SetDefault("cooccur.vocab_file", defaultVocabFile)
	v.SetDefault("cooccur.overflow_file", defaultOverflowFile)
	v.SetDefault("cooccur.memory", defaultMemoryGB)
	v.SetDefault("cooccur.window_size", defaultWindowSize)
	v.SetDefault("cooccur.symmetric", true)

	v.SetDefault("shuffle.temp_file", defaultTempFile)
	v.SetDefault("shuffle.memory", defaultMemoryGB)
	v.SetDefault("shuffle.seed", defaultSeed)
}

// Validate checks field constraints and returns the first violation.
func (c *Config) Validate() error {
	if c.Logging.Verbose < 0 || c.Logging.Verbose > 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidVerbose, c.Logging.Verbose)
	}

	if c.Vocab.MinCount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMinCount, c.Vocab.MinCount)
	}

	if c.Vocab.MaxVocab < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxVocab, c.Vocab.MaxVocab)
	}

	if c.Cooccur.WindowSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, c.Cooccur.WindowSize)
	}

	if c.Cooccur.Memory <= 0 {
		return fmt.Errorf("%w: cooccur memory %v", ErrInvalidMemory, c.Cooccur.Memory)
	}

	if c.Shuffle.Memory <= 0 {
		return fmt.Errorf("%w: shuffle memory %v", ErrInvalidMemory, c.Shuffle.Memory)
	}

	if c.Shuffle.Seed < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSeed, c.Shuffle.Seed)
	}

	return nil
}

// resolveMemoryGB prefers an explicit humanized byte string over the float
// gigabyte field.
func resolveMemoryGB(memoryGB float64, memoryBytes string) (float64, error) {
	if memoryBytes == "" {
		return memoryGB, nil
	}

	parsed, err := humanize.ParseBytes(memoryBytes)
	if err != nil {
		return 0, fmt.Errorf("parse memory bytes %q: %w", memoryBytes, err)
	}

	return memplan.BytesToGigabytes(int64(parsed)), nil
}

// MemoryGB returns the accumulator's memory limit in gigabytes.
func (c CoocConfig) MemoryGB() (float64, error) {
	return resolveMemoryGB(c.Memory, c.MemoryBytes)
}

// MemoryGB returns the shuffler's memory limit in gigabytes.
func (c ShuffleConfig) MemoryGB() (float64, error) {
	return resolveMemoryGB(c.Memory, c.MemoryBytes)
}

// WriteYAML emits the effective configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}
