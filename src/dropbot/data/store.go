package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trackclub/dropbot/src/dropbot/types"
)

// Defaults seed the settings row the first time a guild is seen.
type Defaults struct {
	ChannelID       string
	PingRoleID      string
	DurationSeconds int
	DailyEnabled    bool
	WebhookURL      string
	AllowDomains    string
}

// Store owns every persisted row. Nothing else writes to these tables;
// the engine and scheduler re-read through it on every operation.
type Store struct {
	db       *gorm.DB
	defaults Defaults
}

func NewStore(db *gorm.DB, defaults Defaults) *Store {
	if defaults.DurationSeconds < 30 {
		defaults.DurationSeconds = 600
	}
	if defaults.AllowDomains == "" {
		defaults.AllowDomains = types.DefaultAllowDomains
	}
	return &Store{db: db, defaults: defaults}
}

// DB exposes the underlying handle for the webserver's read paths.
func (s *Store) DB() *gorm.DB { return s.db }

// GetOrCreateSettings returns the guild's settings row, inserting
// defaults atomically if it does not exist yet.
func (s *Store) GetOrCreateSettings(guildID string) (*types.GuildSettings, error) {
	var gs types.GuildSettings
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&gs, "guild_id = ?", guildID).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		gs = types.GuildSettings{
			GuildID:         guildID,
			ChannelID:       s.defaults.ChannelID,
			PingRoleID:      s.defaults.PingRoleID,
			DurationSeconds: s.defaults.DurationSeconds,
			DailyEnabled:    s.defaults.DailyEnabled,
			WebhookURL:      s.defaults.WebhookURL,
			AllowDomains:    s.defaults.AllowDomains,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&gs).Error; err != nil {
			return err
		}
		return tx.First(&gs, "guild_id = ?", guildID).Error
	})
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

// UpdateSettings applies a partial column update to a guild's settings.
func (s *Store) UpdateSettings(guildID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&types.GuildSettings{}).
		Where("guild_id = ?", guildID).
		Updates(updates).Error
}

// GetRunningRound returns the guild's running round with the soonest
// end time, or nil when there is none.
func (s *Store) GetRunningRound(guildID string) (*types.Round, error) {
	var r types.Round
	err := s.db.Where("guild_id = ? AND status = ?", guildID, types.RoundRunning).
		Order("end_time ASC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRunningRoundByThread matches an inbound thread message to its
// running round.
func (s *Store) GetRunningRoundByThread(guildID, threadID string) (*types.Round, error) {
	var r types.Round
	err := s.db.Where("guild_id = ? AND thread_id = ? AND status = ?",
		guildID, threadID, types.RoundRunning).
		Order("end_time DESC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HasRoundStartedToday reports whether any round, regardless of
// status, was created inside the given unix day bounds.
func (s *Store) HasRoundStartedToday(guildID string, dayStart, dayEnd int64) (bool, error) {
	var count int64
	err := s.db.Model(&types.Round{}).
		Where("guild_id = ? AND created_at >= ? AND created_at < ?",
			guildID, time.Unix(dayStart, 0).UTC(), time.Unix(dayEnd, 0).UTC()).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) InsertRound(r *types.Round) error {
	return s.db.Create(r).Error
}

func (s *Store) FetchRound(roundID uint64) (*types.Round, error) {
	var r types.Round
	if err := s.db.First(&r, roundID).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkRoundEnded commits the running -> ended transition together with
// the winner fields. The update is conditional on the round still
// being in running status; the false return means another caller got
// there first and the round must not be processed again.
func (s *Store) MarkRoundEnded(roundID uint64, winnerUserID, winnerMessageID string, winnerScore int) (bool, error) {
	res := s.db.Model(&types.Round{}).
		Where("id = ? AND status = ?", roundID, types.RoundRunning).
		Updates(map[string]interface{}{
			"status":            types.RoundEnded,
			"winner_user_id":    winnerUserID,
			"winner_message_id": winnerMessageID,
			"winner_score":      winnerScore,
		})
	return res.RowsAffected > 0, res.Error
}

// SetWinnersMessage records the announcement message id, best-effort.
func (s *Store) SetWinnersMessage(roundID uint64, messageID string) error {
	return s.db.Model(&types.Round{}).
		Where("id = ?", roundID).
		Update("winners_message_id", messageID).Error
}

// ForceEndTime clamps a round's end time so the next EndRound call
// treats it as expired.
func (s *Store) ForceEndTime(roundID uint64, now int64) error {
	return s.db.Model(&types.Round{}).
		Where("id = ?", roundID).
		Update("end_time", now).Error
}

// InsertSubmissionIfAbsent inserts the submission unless the
// (round, message) key already exists. Returns false on the duplicate,
// which makes re-delivered message events a no-op.
func (s *Store) InsertSubmissionIfAbsent(sub *types.Submission) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) HasUserSubmitted(roundID uint64, userID string) (bool, error) {
	var count int64
	err := s.db.Model(&types.Submission{}).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListSubmissions returns a round's submissions in submission-time
// order; the scoring tie-break depends on this ordering.
func (s *Store) ListSubmissions(roundID uint64) ([]types.Submission, error) {
	var subs []types.Submission
	err := s.db.Where("round_id = ?", roundID).
		Order("submitted_at ASC").
		Find(&subs).Error
	return subs, err
}

// ListRunningRoundsPastEnd returns overdue running rounds, soonest
// end time first.
func (s *Store) ListRunningRoundsPastEnd(now int64) ([]types.Round, error) {
	var rounds []types.Round
	err := s.db.Where("status = ? AND end_time <= ?", types.RoundRunning, now).
		Order("end_time ASC").
		Find(&rounds).Error
	return rounds, err
}

// ListDailyAutoStartDue returns settings rows with daily auto-start
// enabled and a channel configured.
func (s *Store) ListDailyAutoStartDue() ([]types.GuildSettings, error) {
	var rows []types.GuildSettings
	err := s.db.Where("daily_enabled = ? AND channel_id <> ''", true).
		Find(&rows).Error
	return rows, err
}
