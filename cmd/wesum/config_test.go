package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAIModel, cfg.AI.Model)
	assert.Equal(t, DefaultAIBaseURL, cfg.AI.BaseURL)
	assert.Equal(t, DefaultMaxHours, cfg.Filters.MaxHours)
	assert.Equal(t, "weighted", cfg.Classifier)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
}

func TestLoadConfigEnvOverridesDefaults(t *testing.T) {
	t.Setenv(EnvAIModel, "qwen-plus")
	t.Setenv(EnvMaxHours, "48")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "qwen-plus", cfg.AI.Model)
	assert.Equal(t, 48, cfg.Filters.MaxHours)
}

func TestLoadConfigFileOverridesEnv(t *testing.T) {
	t.Setenv(EnvAIModel, "from-env")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ai":{"model":"from-file"}}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AI.Model)
	// Keys the file does not set keep their env/default values.
	assert.Equal(t, DefaultAIBaseURL, cfg.AI.BaseURL)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	cfg.AI.APIKey = "key"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push credential")

	cfg.Push.SendKey = "sendkey"
	require.NoError(t, cfg.Validate())

	cfg.Filters.MaxHours = 0
	require.Error(t, cfg.Validate())
}

func TestPushURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Push.SendKey = "SCT123"
	assert.Equal(t, fmt.Sprintf(DefaultPushEndpoint, "SCT123"), cfg.PushURL())

	cfg.Push.Endpoint = "https://push.example.com/send"
	assert.Equal(t, "https://push.example.com/send", cfg.PushURL())
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	body := `sources:
  - name: 甲号
    address: https://example.com/a.xml
    enabled: true
  - name: 乙号
    address: https://example.com/b.xml
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "甲号", sources[0].Name)
	assert.True(t, sources[0].Enabled)

	enabled := EnabledSources(sources)
	require.Len(t, enabled, 1)
	assert.Equal(t, "甲号", enabled[0].Name)
}

func TestLoadSourcesMissingFileYieldsDisabledExample(t *testing.T) {
	sources, err := LoadSources(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Len(t, sources, 1)
	assert.False(t, sources[0].Enabled)
	assert.Empty(t, EnabledSources(sources))
}
