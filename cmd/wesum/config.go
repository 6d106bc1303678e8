// cmd/wesum/config.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds application configuration. Precedence: explicit config file
// overrides environment variables, environment variables override the
// built-in defaults.
type Config struct {
	AI struct {
		APIKey  string `json:"api_key"`
		BaseURL string `json:"base_url"`
		Model   string `json:"model"`
	} `json:"ai"`

	Push struct {
		SendKey     string `json:"sendkey"`
		Endpoint    string `json:"endpoint"` // overrides the ServerChan default
		TitlePrefix string `json:"title_prefix"`
	} `json:"push"`

	Archive struct {
		Endpoint string `json:"endpoint"` // paste service for the full digest
	} `json:"archive"`

	Discord struct {
		BotToken  string `json:"bot_token"`
		ChannelID string `json:"channel_id"`
	} `json:"discord"`

	Filters struct {
		MaxHours             int `json:"max_hours"`
		MaxArticlesPerSource int `json:"max_articles_per_source"` // 0 = unlimited
	} `json:"filters"`

	QuietHours struct {
		Start int `json:"start"` // hour of day, inclusive
		End   int `json:"end"`   // hour of day, exclusive; start==end disables
	} `json:"quiet_hours"`

	Classifier  string `json:"classifier"` // "weighted" (default) or "count"
	Schedule    string `json:"schedule"`   // cron expression for -serve mode
	StatusPort  int    `json:"status_port"`
	LogPath     string `json:"log_path"`
	LogLevel    string `json:"log_level"`
	SeenFile    string `json:"seen_file"`
	StateFile   string `json:"state_file"`
	SourcesFile string `json:"sources_file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.AI.BaseURL = DefaultAIBaseURL
	cfg.AI.Model = DefaultAIModel
	cfg.Push.TitlePrefix = "【WeSum】"
	cfg.Filters.MaxHours = DefaultMaxHours
	cfg.Classifier = "weighted"
	cfg.Schedule = DefaultSchedule
	cfg.LogPath = DefaultLogPath
	cfg.LogLevel = "info"
	cfg.SeenFile = DefaultSeenPath
	cfg.StateFile = DefaultStatePath
	cfg.SourcesFile = DefaultSourcesPath
	return cfg
}

// LoadConfig builds the effective configuration. The file at path is
// optional; when present its keys win over everything else.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnv()

	if path == "" {
		path = GetEnvString(EnvConfigPath, DefaultConfigPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the defaults.
func (c *Config) applyEnv() {
	c.AI.APIKey = GetEnvString(EnvAPIKey, c.AI.APIKey)
	c.AI.BaseURL = GetEnvString(EnvAIBaseURL, c.AI.BaseURL)
	c.AI.Model = GetEnvString(EnvAIModel, c.AI.Model)
	c.Push.SendKey = GetEnvString(EnvPushSendKey, c.Push.SendKey)
	c.Push.Endpoint = GetEnvString(EnvPushEndpoint, c.Push.Endpoint)
	c.Archive.Endpoint = GetEnvString(EnvArchiveURL, c.Archive.Endpoint)
	c.Discord.BotToken = GetEnvString(EnvDiscordToken, c.Discord.BotToken)
	c.Discord.ChannelID = GetEnvString(EnvDiscordChanID, c.Discord.ChannelID)
	c.LogLevel = GetEnvString(EnvLogLevel, c.LogLevel)
	c.Filters.MaxHours = GetEnvInt(EnvMaxHours, c.Filters.MaxHours)
	c.Filters.MaxArticlesPerSource = GetEnvInt(EnvMaxPerSource, c.Filters.MaxArticlesPerSource)
}

// Validate checks the credentials the pipeline cannot run without. Called
// before any network activity.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("missing generation API key (config ai.api_key or %s)", EnvAPIKey)
	}
	if c.Push.SendKey == "" && c.Push.Endpoint == "" {
		return fmt.Errorf("missing push credential (config push.sendkey or %s)", EnvPushSendKey)
	}
	if c.Filters.MaxHours <= 0 {
		return fmt.Errorf("filters.max_hours must be positive, got %d", c.Filters.MaxHours)
	}
	return nil
}

// PushURL returns the delivery endpoint, defaulting to ServerChan keyed by
// the sendkey.
func (c *Config) PushURL() string {
	if c.Push.Endpoint != "" {
		return c.Push.Endpoint
	}
	return fmt.Sprintf(DefaultPushEndpoint, c.Push.SendKey)
}

// LoadSources reads the feed list. A missing file yields a single disabled
// example entry so a fresh checkout runs without touching the network.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Source{{
				Name:    "example",
				Address: "http://localhost:4000/feeds/all.atom",
				Enabled: false,
			}}, nil
		}
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}

	var wrapper struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse sources %s: %w", path, err)
	}
	return wrapper.Sources, nil
}

// EnabledSources filters the list down to active feeds.
func EnabledSources(sources []Source) []Source {
	var out []Source
	for _, s := range sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
