package paging

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds simulator and CLI configuration
type Config struct {
	// Simulation
	Frames        int      `json:"frames"`         // Default frame capacity
	Policies      []string `json:"policies"`       // Policies run by compare (fifo, lru, opt)
	MaxReferences int      `json:"max_references"` // Upper bound on reference string length, 0 = unlimited

	// Trace archive
	Compression string `json:"compression"` // Archive compression (none, lz4, snappy, best)

	// Output
	EnableMetrics bool   `json:"enable_metrics"` // Log simulation metrics on exit
	HistogramSize int    `json:"histogram_size"` // Latency samples kept
	LogLevel      string `json:"log_level"`      // Log level (debug, info, warn, error)
	LogFormat     string `json:"log_format"`     // Log format (text, json)
	Color         bool   `json:"color"`          // Highlight tables with ANSI colours
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Frames:        3,
		Policies:      []string{"fifo", "lru", "opt"},
		MaxReferences: 0,
		Compression:   "lz4",
		EnableMetrics: false,
		HistogramSize: 1024,
		LogLevel:      "info",
		LogFormat:     "text",
		Color:         true,
	}
}

// LoadConfigFromFile loads configuration from a JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromEnv applies PAGESIM_* environment variables on top of base.
// Variables in the optional env files are loaded first and never override
// variables already set in the process environment.
func LoadConfigFromEnv(base *Config, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	config := base.Clone()

	if val := os.Getenv("PAGESIM_FRAMES"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, ErrUnparsableCapacity("LoadConfigFromEnv", val, err)
		}
		config.Frames = n
	}

	if val := os.Getenv("PAGESIM_POLICIES"); val != "" {
		config.Policies = strings.Split(val, ",")
	}

	if val := os.Getenv("PAGESIM_MAX_REFERENCES"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, ErrConfig("LoadConfigFromEnv", fmt.Sprintf("invalid PAGESIM_MAX_REFERENCES: %q", val))
		}
		config.MaxReferences = n
	}

	if val := os.Getenv("PAGESIM_COMPRESSION"); val != "" {
		config.Compression = val
	}

	if val := os.Getenv("PAGESIM_ENABLE_METRICS"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, ErrConfig("LoadConfigFromEnv", fmt.Sprintf("invalid PAGESIM_ENABLE_METRICS: %q", val))
		}
		config.EnableMetrics = b
	}

	if val := os.Getenv("PAGESIM_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("PAGESIM_LOG_FORMAT"); val != "" {
		config.LogFormat = val
	}

	if val := os.Getenv("PAGESIM_COLOR"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, ErrConfig("LoadConfigFromEnv", fmt.Sprintf("invalid PAGESIM_COLOR: %q", val))
		}
		config.Color = b
	}

	return config, nil
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Frames < 1 {
		return ErrConfig("Validate", "frames must be greater than 0")
	}

	if len(c.Policies) == 0 {
		return ErrConfig("Validate", "at least one policy is required")
	}
	for _, name := range c.Policies {
		if _, err := ParsePolicy(name); err != nil {
			return ErrConfig("Validate", fmt.Sprintf("invalid policy: %s", name))
		}
	}

	if c.MaxReferences < 0 {
		return ErrConfig("Validate", "max references cannot be negative")
	}

	if _, err := ParseCompression(c.Compression); err != nil {
		return ErrConfig("Validate", fmt.Sprintf("invalid compression: %s (must be none, lz4, snappy or best)", c.Compression))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return ErrConfig("Validate", fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrConfig("Validate", fmt.Sprintf("invalid log format: %s (must be text or json)", c.LogFormat))
	}

	return nil
}

// PolicyList returns the configured policies, parsed
func (c *Config) PolicyList() ([]Policy, error) {
	out := make([]Policy, 0, len(c.Policies))
	for _, name := range c.Policies {
		p, err := ParsePolicy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.Policies = slices.Clone(c.Policies)
	return &clone
}
