package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the process configuration read from the environment
type Config struct {
	Port      string
	LogLevel  zerolog.Level
	LogPretty bool

	// AllowedOrigins restricts websocket origins; empty allows any
	AllowedOrigins []string

	// PublicURL is the address players open to join; used for QR codes
	PublicURL string

	// RedisAddr enables the match archive when set
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MatchTTL      time.Duration

	DiscordWebhookID    string
	DiscordWebhookToken string

	TotalRounds       int
	RoundDuration     time.Duration
	VoteDuration      time.Duration
	RoundIntermission time.Duration
	FixRevealDelay    time.Duration
	DocGracePeriod    time.Duration
}

// ArchiveEnabled reports whether finished matches go to Redis
func (c *Config) ArchiveEnabled() bool {
	return c.RedisAddr != ""
}

// AnnounceEnabled reports whether finished matches go to Discord
func (c *Config) AnnounceEnabled() bool {
	return c.DiscordWebhookID != "" && c.DiscordWebhookToken != ""
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		PublicURL:           strings.TrimSuffix(getEnv("PUBLIC_URL", ""), "/"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		DiscordWebhookID:    getEnv("DISCORD_WEBHOOK_ID", ""),
		DiscordWebhookToken: getEnv("DISCORD_WEBHOOK_TOKEN", ""),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "")),
	}

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidValue, err)
	}
	cfg.LogLevel = level

	if cfg.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.TotalRounds, err = getInt("TOTAL_ROUNDS", 3); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"MATCH_TTL", 7 * 24 * time.Hour, &cfg.MatchTTL},
		{"ROUND_DURATION", 90 * time.Second, &cfg.RoundDuration},
		{"VOTE_DURATION", 60 * time.Second, &cfg.VoteDuration},
		{"ROUND_INTERMISSION", 5 * time.Second, &cfg.RoundIntermission},
		{"FIX_REVEAL_DELAY", 3 * time.Second, &cfg.FixRevealDelay},
		{"DOC_GRACE_PERIOD", 30 * time.Second, &cfg.DocGracePeriod},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if (cfg.DiscordWebhookID == "") != (cfg.DiscordWebhookToken == "") {
		return nil, ErrIncompleteWebhook
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, raw)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, raw)
	}
	return b, nil
}

// getDuration accepts Go durations ("90s") or whole seconds ("90")
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
