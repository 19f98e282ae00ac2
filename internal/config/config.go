package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	RedisURL         string
	TelegramBotToken string

	HTTPPort       int
	SSHPort        int
	SSHHostKeyPath string

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int

	// Cache TTL classes, one per upstream cadence. The fetch core itself
	// never caches; these belong to the serving layer.
	FlowCacheTTL     time.Duration
	SnapshotCacheTTL time.Duration
	SlowCacheTTL     time.Duration

	// MVRVStart is the first day requested from the valuation-ratio feed.
	MVRVStart time.Time

	TreasuryTopN int

	RefreshEnabled bool
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, Telegram bot disabled")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.HTTPPort = intEnv("HTTP_PORT", 8080)
	cfg.SSHPort = intEnv("SSH_PORT", 2222)

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/dashboard_ed25519"
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	cfg.AdvisorMaxHistory = intEnv("ADVISOR_MAX_HISTORY", 20)

	cfg.FlowCacheTTL = ttlEnv("FLOW_CACHE_SECS", 900*time.Second)
	cfg.SnapshotCacheTTL = ttlEnv("SNAPSHOT_CACHE_SECS", 1800*time.Second)
	cfg.SlowCacheTTL = ttlEnv("SLOW_CACHE_SECS", 3600*time.Second)

	cfg.MVRVStart = time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	if v := strings.TrimSpace(os.Getenv("MVRV_START")); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			cfg.MVRVStart = d
		} else {
			log.Printf("Warning: invalid MVRV_START=%q, using default", v)
		}
	}

	cfg.TreasuryTopN = intEnv("TREASURY_TOP_N", 15)

	cfg.RefreshEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("REFRESH_DISABLED")), "true")

	return cfg
}

func intEnv(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func ttlEnv(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
