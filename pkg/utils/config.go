package utils

import (
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config provides thread-safe access to environment-style settings with
// typed getters and defaults
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewConfig creates a new Config instance with a copy of the provided values
func NewConfig(values map[string]string) *Config {
	config := &Config{
		values: make(map[string]string, len(values)),
	}

	maps.Copy(config.values, values)

	return config
}

// NewConfigFromEnv creates a new Config instance from the process
// environment after loading the given .env files
func NewConfigFromEnv(files ...string) *Config {
	return NewConfig(LoadEnv(files...))
}

// lookup returns the raw value and whether the key is set
func (c *Config) lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.values[key]
	return value, exists
}

// Get retrieves a configuration value by key
// Returns empty string if key doesn't exist
func (c *Config) Get(key string) string {
	value, _ := c.lookup(key)
	return value
}

// GetWithDefault retrieves a configuration value by key, falling back to
// defaultValue when the key is missing or empty
func (c *Config) GetWithDefault(key, defaultValue string) string {
	if value, _ := c.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolWithDefault retrieves a configuration value as a boolean. Missing,
// empty or unparseable values yield defaultValue.
func (c *Config) GetBoolWithDefault(key string, defaultValue bool) bool {
	value, _ := c.lookup(key)

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "on", "enabled":
		return true
	case "0", "false", "f", "no", "off", "disabled":
		return false
	default:
		return defaultValue
	}
}

// GetBool retrieves a configuration value as a boolean, false when unset
func (c *Config) GetBool(key string) bool {
	return c.GetBoolWithDefault(key, false)
}

// GetIntWithDefault retrieves a configuration value as an integer
func (c *Config) GetIntWithDefault(key string, defaultValue int) int {
	value, _ := c.lookup(key)

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDurationWithDefault retrieves a configuration value as a duration
// such as "10s" or "1h30m"
func (c *Config) GetDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value, _ := c.lookup(key)

	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetListWithDefault splits a comma separated value, dropping empty items
func (c *Config) GetListWithDefault(key string, defaultValue []string) []string {
	var list []string
	for item := range strings.SplitSeq(c.Get(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	if len(list) == 0 {
		return defaultValue
	}
	return list
}

// Has checks if a configuration key exists
func (c *Config) Has(key string) bool {
	_, exists := c.lookup(key)
	return exists
}

// Set modifies a configuration value
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}
