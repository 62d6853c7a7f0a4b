package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Dir     string `yaml:"dir"`
	BotFile string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// SearchConfig controls the track search flow.
type SearchConfig struct {
	// Limit caps the number of merged results kept per search.
	Limit int `yaml:"limit" envconfig:"SEARCH_LIMIT"`
	// TracksPerPage is the page size used by results keyboards.
	TracksPerPage int `yaml:"tracks_per_page" envconfig:"SEARCH_TRACKS_PER_PAGE"`
	// MinQueryLen rejects shorter queries before hitting the provider.
	MinQueryLen int `yaml:"min_query_len" envconfig:"SEARCH_MIN_QUERY_LEN"`
}

// DownloadConfig controls the download lifecycle.
type DownloadConfig struct {
	MaxFileSizeMB int    `yaml:"max_file_size_mb" envconfig:"DOWNLOAD_MAX_FILE_SIZE_MB"`
	Dir           string `yaml:"dir" envconfig:"DOWNLOAD_DIR"`
	// ProgressCheckpoints lists synthetic percentage checkpoints emitted
	// between the initial and final progress updates. They are cosmetic
	// and not derived from bytes actually transferred.
	ProgressCheckpoints []int `yaml:"progress_checkpoints" envconfig:"DOWNLOAD_PROGRESS_CHECKPOINTS"`
	ProgressDelayMS     int   `yaml:"progress_delay_ms" envconfig:"DOWNLOAD_PROGRESS_DELAY_MS"`
}

// MaxBytes returns the configured size cap in bytes.
func (d DownloadConfig) MaxBytes() int64 {
	return int64(d.MaxFileSizeMB) * 1024 * 1024
}

// ProgressDelay returns the inter-checkpoint delay as a duration.
func (d DownloadConfig) ProgressDelay() time.Duration {
	return time.Duration(d.ProgressDelayMS) * time.Millisecond
}

// HistoryConfig toggles the optional Postgres download history.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"HISTORY_ENABLED"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Search    SearchConfig    `yaml:"search"`
	Download  DownloadConfig  `yaml:"download"`
	History   HistoryConfig   `yaml:"history"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = 25
	}
	if cfg.Search.TracksPerPage <= 0 {
		cfg.Search.TracksPerPage = 5
	}
	if cfg.Search.MinQueryLen <= 0 {
		cfg.Search.MinQueryLen = 2
	}

	if cfg.Download.MaxFileSizeMB <= 0 {
		cfg.Download.MaxFileSizeMB = 50
	}
	if strings.TrimSpace(cfg.Download.Dir) == "" {
		cfg.Download.Dir = "downloads"
	}
	if len(cfg.Download.ProgressCheckpoints) == 0 {
		cfg.Download.ProgressCheckpoints = []int{10, 25, 40, 60, 75, 90}
	}
	prev := 0
	for _, p := range cfg.Download.ProgressCheckpoints {
		if p <= prev || p >= 100 {
			return fmt.Errorf("download.progress_checkpoints must be strictly increasing within (0, 100)")
		}
		prev = p
	}
	if cfg.Download.ProgressDelayMS <= 0 {
		cfg.Download.ProgressDelayMS = 300
	}

	return nil
}
