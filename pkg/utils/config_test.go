package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("with nil values", func(t *testing.T) {
		config := NewConfig(nil)
		require.NotNil(t, config)
		assert.False(t, config.Has("anything"))
	})

	t.Run("values are copied", func(t *testing.T) {
		values := map[string]string{"key1": "value1"}
		config := NewConfig(values)

		values["key1"] = "modified"
		assert.Equal(t, "value1", config.Get("key1"))
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FLAGDASH_TEST_FROM_FILE=file_value\nFLAGDASH_TEST_OVERRIDDEN=file_value\n"), 0o644))

	t.Setenv("FLAGDASH_TEST_OVERRIDDEN", "process_value")
	t.Cleanup(func() { os.Unsetenv("FLAGDASH_TEST_FROM_FILE") })

	config := NewConfigFromEnv(envFile, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "file_value", config.Get("FLAGDASH_TEST_FROM_FILE"))
	assert.Equal(t, "process_value", config.Get("FLAGDASH_TEST_OVERRIDDEN"))
}

func TestConfigGetWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"existing": "value",
		"empty":    "",
	})

	tests := []struct {
		key      string
		expected string
	}{
		{"existing", "value"},
		{"empty", "default"},
		{"missing", "default"},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			assert.Equal(t, test.expected, config.GetWithDefault(test.key, "default"))
		})
	}
}

func TestConfigGetBoolWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"true_bool":      "true",
		"false_bool":     "false",
		"true_1":         "1",
		"false_0":        "0",
		"true_yes":       "YES",
		"false_off":      "off",
		"true_enabled":   "enabled",
		"false_disabled": "disabled",
		"invalid":        "maybe",
		"empty":          "",
	})

	tests := []struct {
		key          string
		defaultValue bool
		expected     bool
	}{
		{"true_bool", false, true},
		{"false_bool", true, false},
		{"true_1", false, true},
		{"false_0", true, false},
		{"true_yes", false, true},
		{"false_off", true, false},
		{"true_enabled", false, true},
		{"false_disabled", true, false},
		{"invalid", true, true},
		{"empty", true, true},
		{"missing", true, true},
		{"missing", false, false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			assert.Equal(t, test.expected, config.GetBoolWithDefault(test.key, test.defaultValue))
		})
	}

	assert.False(t, config.GetBool("missing"))
	assert.True(t, config.GetBool("true_bool"))
}

func TestConfigGetIntWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"port":    "9090",
		"invalid": "ninety",
	})

	assert.Equal(t, 9090, config.GetIntWithDefault("port", 8080))
	assert.Equal(t, 8080, config.GetIntWithDefault("invalid", 8080))
	assert.Equal(t, 8080, config.GetIntWithDefault("missing", 8080))
}

func TestConfigGetDurationWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"timeout": "15s",
		"invalid": "15",
	})

	assert.Equal(t, 15*time.Second, config.GetDurationWithDefault("timeout", time.Second))
	assert.Equal(t, time.Second, config.GetDurationWithDefault("invalid", time.Second))
	assert.Equal(t, time.Second, config.GetDurationWithDefault("missing", time.Second))
}

func TestConfigGetListWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"origins": "http://a.test, http://b.test,,",
		"blank":   " , ",
	})

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, config.GetListWithDefault("origins", nil))
	assert.Equal(t, []string{"*"}, config.GetListWithDefault("blank", []string{"*"}))
	assert.Equal(t, []string{"*"}, config.GetListWithDefault("missing", []string{"*"}))
}

func TestConfigSetAndHas(t *testing.T) {
	config := NewConfig(nil)
	assert.False(t, config.Has("key"))

	config.Set("key", "")
	assert.True(t, config.Has("key"))
	assert.Equal(t, "fallback", config.GetWithDefault("key", "fallback"))

	config.Set("key", "value")
	assert.Equal(t, "value", config.Get("key"))
}

func TestConfigConcurrentAccess(t *testing.T) {
	config := NewConfig(nil)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			config.Set("counter", string(rune('a'+i)))
		}()
		go func() {
			defer wg.Done()
			_ = config.GetBoolWithDefault("counter", false)
		}()
	}
	wg.Wait()

	assert.True(t, config.Has("counter"))
}

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("FLAGDASH_TEST_ENV", "set")

	assert.Equal(t, "set", GetEnvWithDefault("FLAGDASH_TEST_ENV", "default"))
	assert.Equal(t, "default", GetEnvWithDefault("FLAGDASH_TEST_ENV_MISSING", "default"))
}
