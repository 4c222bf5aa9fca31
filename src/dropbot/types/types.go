package types

import "time"

// Round status values. Cancelled is reserved for a manual cancel path
// and is never reached by the scheduler.
const (
	RoundRunning   = "running"
	RoundEnded     = "ended"
	RoundCancelled = "cancelled"
)

// DefaultAllowDomains is the out-of-the-box submission allow-list.
const DefaultAllowDomains = "youtube.com,youtu.be,open.spotify.com,music.apple.com,soundcloud.com"

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Per-guild game configuration. One row per guild, created on first
// access, never deleted.
type GuildSettings struct {
	GuildID         string `gorm:"primaryKey;size:64"`
	ChannelID       string `gorm:"size:64"`
	PingRoleID      string `gorm:"size:64"`
	DurationSeconds int    `gorm:"not null;default:600"`
	DailyEnabled    bool   `gorm:"default:false"`
	DailyHHMM       string `gorm:"column:daily_hhmm_utc;size:8"`
	DailyRandomDate string `gorm:"column:daily_random_date_utc;size:16"`
	WebhookURL      string `gorm:"size:256"`
	AllowDomains    string `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// One timed game instance tied to one thread. Rounds are append-only;
// status only ever moves running -> ended|cancelled.
type Round struct {
	ID               uint64 `gorm:"primaryKey"`
	GuildID          string `gorm:"index;size:64;not null"`
	ChannelID        string `gorm:"size:64;not null"`
	ThreadID         string `gorm:"index;size:64;not null"`
	StartTime        int64  `gorm:"not null"`
	EndTime          int64  `gorm:"index;not null"`
	Status           string `gorm:"index;size:16;not null;default:running"`
	PromptText       string `gorm:"size:1024"`
	PromptMessageID  string `gorm:"size:64"`
	WinnersMessageID string `gorm:"size:64"`
	WinnerUserID     string `gorm:"size:64"`
	WinnerMessageID  string `gorm:"size:64"`
	WinnerScore      int    `gorm:"not null;default:0"`
	CreatedAt        time.Time
}

// One qualifying link posted during an active round. Composite key on
// (round, message) makes re-delivered gateway events idempotent.
type Submission struct {
	RoundID     uint64 `gorm:"primaryKey"`
	MessageID   string `gorm:"primaryKey;size:64"`
	GuildID     string `gorm:"size:64;not null"`
	ThreadID    string `gorm:"size:64;not null"`
	UserID      string `gorm:"index;size:64;not null"`
	SubmittedAt int64  `gorm:"not null"`
	URL         string `gorm:"size:512;not null"`
}
