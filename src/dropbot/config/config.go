package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/trackclub/dropbot/src/dropbot/data"
	"github.com/trackclub/dropbot/src/dropbot/types"
)

type Config struct {
	Token    string
	RedisURL string

	// Admin/status API.
	APIPort  string
	APIToken string

	// Game defaults applied when a guild is first seen.
	DropChannelID       string
	DropPingRoleID      string
	DropDurationSeconds int
	DropDailyEnabled    bool
	DropAllowDomains    string
	DropWebhookURL      string

	// Round texture.
	PromptOverride string
	WebhookName    string
	GraceDelay     time.Duration
}

// Load reads configuration from the settings table with environment
// fallbacks, matching how every other setting in the bot is sourced.
func Load(db *gorm.DB) Config {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	cfg := Config{
		Token:               setting("discord_token", "DISCORD_TOKEN", ""),
		RedisURL:            getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		APIPort:             setting("api_port", "API_PORT", "8090"),
		APIToken:            setting("api_token", "API_TOKEN", ""),
		DropChannelID:       setting("drop_channel_id", "DROP_CHANNEL_ID", ""),
		DropPingRoleID:      setting("drop_ping_role_id", "DROP_PING_ROLE_ID", ""),
		DropDurationSeconds: settingInt("drop_duration_seconds", "DROP_DURATION_SECONDS", 600),
		DropDailyEnabled:    settingBool("drop_daily_enabled", "DROP_DAILY_ENABLED", false),
		DropAllowDomains:    setting("drop_allow_domains", "DROP_ALLOW_DOMAINS", types.DefaultAllowDomains),
		DropWebhookURL:      setting("drop_webhook_url", "DROP_WEBHOOK_URL", ""),
		PromptOverride:      setting("drop_prompt", "DROP_PROMPT", ""),
		WebhookName:         setting("drop_webhook_name", "DROP_WEBHOOK_NAME", "Drop The Track"),
		GraceDelay:          time.Duration(settingInt("drop_grace_seconds", "DROP_GRACE_SECONDS", 3600)) * time.Second,
	}

	if cfg.DropDurationSeconds < 30 {
		cfg.DropDurationSeconds = 30
	}
	return cfg
}

// Defaults maps the config onto the store's per-guild seed values.
func (c Config) Defaults() data.Defaults {
	return data.Defaults{
		ChannelID:       c.DropChannelID,
		PingRoleID:      c.DropPingRoleID,
		DurationSeconds: c.DropDurationSeconds,
		DailyEnabled:    c.DropDailyEnabled,
		WebhookURL:      c.DropWebhookURL,
		AllowDomains:    c.DropAllowDomains,
	}
}

func setting(name, envKey, def string) string {
	if v := data.GetSetting(name); v != "" {
		return v
	}
	return getenv(envKey, def)
}

func settingInt(name, envKey string, def int) int {
	if v := setting(name, envKey, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: invalid integer for %s: %q", name, v)
	}
	return def
}

func settingBool(name, envKey string, def bool) bool {
	if v := setting(name, envKey, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("config: invalid boolean for %s: %q", name, v)
	}
	return def
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
