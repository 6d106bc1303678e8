// cmd/wesum/constants.go
package main

import "time"

// Application constants
const (
	AppName    = "WeSum"
	AppVersion = "1.0.0"
)

// Default file locations
const (
	DefaultConfigPath  = "config.json"
	DefaultSourcesPath = "config/sources.yml"
	DefaultSeenPath    = "data/seen_articles.json"
	DefaultStatePath   = "data/state.json"
	DefaultLogPath     = "logs/wesum.log"
)

// Environment variables
const (
	EnvConfigPath    = "WESUM_CONFIG"
	EnvAPIKey        = "WESUM_AI_API_KEY"
	EnvAIBaseURL     = "WESUM_AI_BASE_URL"
	EnvAIModel       = "WESUM_AI_MODEL"
	EnvPushSendKey   = "WESUM_PUSH_SENDKEY"
	EnvPushEndpoint  = "WESUM_PUSH_ENDPOINT"
	EnvArchiveURL    = "WESUM_ARCHIVE_ENDPOINT"
	EnvDiscordToken  = "WESUM_DISCORD_TOKEN"
	EnvDiscordChanID = "WESUM_DISCORD_CHANNEL"
	EnvLogLevel      = "WESUM_LOG_LEVEL"
	EnvMaxHours      = "WESUM_MAX_HOURS"
	EnvMaxPerSource  = "WESUM_MAX_PER_SOURCE"
)

// Fetching and truncation ceilings
const (
	RequestTimeout     = 10 * time.Second
	GenerationTimeout  = 30 * time.Second
	BodyCeiling        = 2000 // runes kept from a stripped entry body
	FullPromptCeiling  = 4000 // body runes placed into a full-summary prompt
	BriefPromptCeiling = 2000 // body runes placed into an abbreviated prompt
	MaxCategories      = 5
)

// Weighted classifier thresholds
const (
	TitleWeight      = 2.5
	MinCategoryScore = 2.0
	HeavyScore       = 5.0
	HeavyTitleScore  = 4.0 // heavy when reached together with HeavyTitleHits
	HeavyTitleHits   = 2
	LightScore       = 2.5
)

// Generation API settings
const (
	DefaultAIBaseURL   = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	DefaultAIModel     = "qwen-turbo"
	FullSummaryTokens  = 1000
	BriefSummaryTokens = 300
	GenerationInterval = 750 * time.Millisecond // min spacing between API calls
)

// Delivery settings
const (
	DefaultPushEndpoint = "https://sctapi.ftqq.com/%s.send"
	DiscordChunkLimit   = 2000 // Discord message length ceiling
)

// Scheduling defaults
const (
	DefaultSchedule = "@hourly"
	DefaultMaxHours = 24
)
