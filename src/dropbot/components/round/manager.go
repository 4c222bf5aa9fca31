package round

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/trackclub/dropbot/src/dropbot/components/linkcheck"
	"github.com/trackclub/dropbot/src/dropbot/components/timeutil"
	"github.com/trackclub/dropbot/src/dropbot/data"
	"github.com/trackclub/dropbot/src/dropbot/types"
)

// VoteEmoji is the reaction used to score submissions.
const VoteEmoji = "🔥"

const threadAutoArchiveMinutes = 1440 // 24h

type Config struct {
	Store      *data.Store
	Gateway    Gateway
	Publisher  *Publisher
	Clock      timeutil.Clock
	// WebhookName labels lazily created delivery endpoints.
	WebhookName string
	// GraceDelay is how long a thread stays open for discussion after
	// its round ends before it is locked and archived.
	GraceDelay time.Duration
}

// Manager is the round state machine. It holds no round state of its
// own between calls; everything is re-read from the store.
type Manager struct {
	store       *data.Store
	gateway     Gateway
	publisher   *Publisher
	clock       timeutil.Clock
	webhookName string
	graceDelay  time.Duration
}

func NewManager(config Config) *Manager {
	m := &Manager{
		store:       config.Store,
		gateway:     config.Gateway,
		publisher:   config.Publisher,
		clock:       config.Clock,
		webhookName: config.WebhookName,
		graceDelay:  config.GraceDelay,
	}
	if m.clock == nil {
		m.clock = timeutil.System()
	}
	if m.webhookName == "" {
		m.webhookName = "Drop The Track"
	}
	if m.graceDelay == 0 {
		m.graceDelay = time.Hour
	}
	return m
}

// resolveWebhookURL returns the guild's delivery endpoint, creating
// one on the channel and persisting it if none is configured yet.
func (m *Manager) resolveWebhookURL(guildID, channelID string) (string, error) {
	settings, err := m.store.GetOrCreateSettings(guildID)
	if err != nil {
		return "", err
	}
	if url := strings.TrimSpace(settings.WebhookURL); url != "" {
		return url, nil
	}

	url, err := m.gateway.CreateWebhook(channelID, m.webhookName)
	if err != nil {
		return "", fmt.Errorf("create webhook: %w", err)
	}
	if err := m.store.UpdateSettings(guildID, map[string]interface{}{"webhook_url": url}); err != nil {
		log.Printf("round: failed to persist webhook URL for guild %s: %v", guildID, err)
	}
	return url, nil
}

// StartRound creates the dated thread, posts the prompt through the
// delivery endpoint and persists the running round. Returns 0 on the
// hard failures (no endpoint, thread creation).
func (m *Manager) StartRound(guildID, channelID, promptText string, durationSeconds int, pingRoleID string) (uint64, error) {
	webhookURL, err := m.resolveWebhookURL(guildID, channelID)
	if err != nil {
		log.Printf("round: no delivery endpoint for guild %s: %v. Configure a webhook URL or grant the bot webhook permissions on the channel.", guildID, err)
		return 0, err
	}

	now := m.clock.Now()
	threadName := "Drop • " + timeutil.DayString(now)
	threadID, err := m.gateway.CreateThread(channelID, threadName, threadAutoArchiveMinutes)
	if err != nil {
		log.Printf("round: failed to create thread in channel %s: %v", channelID, err)
		return 0, fmt.Errorf("create thread: %w", err)
	}

	if durationSeconds < 30 {
		durationSeconds = 30
	}
	startTS := now.Unix()
	endTS := startTS + int64(durationSeconds)

	prompt := strings.TrimSpace(promptText)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	variant := strings.ReplaceAll(
		dropVariants[rand.Intn(len(dropVariants))],
		"{duration}", timeutil.Humanize(durationSeconds),
	)
	content := prompt + "\n\n" + variant
	if pingRoleID != "" {
		content = fmt.Sprintf("<@&%s>\n%s", pingRoleID, content)
	}

	// Prompt post is best-effort: the round runs even if the message
	// never lands.
	promptMessageID, err := m.gateway.WebhookSend(webhookURL, content, SendOptions{
		ThreadID:     threadID,
		MentionRoles: pingRoleID != "",
	})
	if err != nil {
		log.Printf("round: webhook send failed for guild %s: %v", guildID, err)
		promptMessageID = ""
	}

	r := types.Round{
		GuildID:         guildID,
		ChannelID:       channelID,
		ThreadID:        threadID,
		StartTime:       startTS,
		EndTime:         endTS,
		Status:          types.RoundRunning,
		PromptText:      prompt,
		PromptMessageID: promptMessageID,
		CreatedAt:       now,
	}
	if err := m.store.InsertRound(&r); err != nil {
		return 0, fmt.Errorf("insert round: %w", err)
	}

	m.publisher.Publish(context.Background(), "round.started", map[string]interface{}{
		"round_id":  r.ID,
		"guild_id":  guildID,
		"thread_id": threadID,
		"end_time":  endTS,
	})

	return r.ID, nil
}

// RecordSubmission validates and persists a qualifying message posted
// into a running round's thread. Non-qualifying messages are silently
// ignored. Callers guard the round's end time.
func (m *Manager) RecordSubmission(r *types.Round, messageID, userID, rawText string) error {
	settings, err := m.store.GetOrCreateSettings(r.GuildID)
	if err != nil {
		return err
	}

	url := linkcheck.ExtractFirstURL(rawText)
	if url == "" {
		return nil
	}
	if !linkcheck.IsAllowed(url, settings.AllowDomains) {
		return nil
	}

	// One submission per user per round.
	submitted, err := m.store.HasUserSubmitted(r.ID, userID)
	if err != nil {
		return err
	}
	if submitted {
		return nil
	}

	inserted, err := m.store.InsertSubmissionIfAbsent(&types.Submission{
		RoundID:     r.ID,
		MessageID:   messageID,
		GuildID:     r.GuildID,
		ThreadID:    r.ThreadID,
		UserID:      userID,
		SubmittedAt: m.clock.Now().Unix(),
		URL:         url,
	})
	if err != nil || !inserted {
		return err
	}

	// Standardise voting by seeding the marker reaction.
	if err := m.gateway.AddReaction(r.ThreadID, messageID, VoteEmoji); err != nil {
		log.Printf("round: failed to add %s reaction to %s: %v", VoteEmoji, messageID, err)
	}
	return nil
}

// EndRound scores the round, commits the terminal transition and
// announces the winner. Calling it on a non-running round is a no-op.
// If the channel or thread cannot be resolved the round is left
// running for the next scheduler tick to retry.
func (m *Manager) EndRound(r *types.Round) error {
	if r.Status != types.RoundRunning {
		return nil
	}

	if err := m.gateway.ResolveChannel(r.ChannelID); err != nil {
		log.Printf("round %d: cannot resolve channel %s: %v", r.ID, r.ChannelID, err)
		return nil
	}
	if err := m.gateway.ResolveChannel(r.ThreadID); err != nil {
		log.Printf("round %d: cannot resolve thread %s: %v", r.ID, r.ThreadID, err)
		return nil
	}

	settings, err := m.store.GetOrCreateSettings(r.GuildID)
	if err != nil {
		return err
	}
	webhookURL, err := m.resolveWebhookURL(r.GuildID, r.ChannelID)
	if err != nil {
		log.Printf("round %d: cannot end, no delivery endpoint for guild %s: %v", r.ID, r.GuildID, err)
		return nil
	}

	subs, err := m.store.ListSubmissions(r.ID)
	if err != nil {
		return err
	}

	// Strictly-greater replacement means the earliest submission at
	// the top score keeps the win.
	winnerUserID, winnerMessageID, winnerURL := "", "", ""
	bestScore := -1
	for _, sub := range subs {
		reactions, err := m.gateway.FetchMessageReactions(r.ThreadID, sub.MessageID)
		if err != nil {
			continue
		}
		if !linkcheck.IsAllowed(sub.URL, settings.AllowDomains) {
			continue
		}
		score := reactions[VoteEmoji]
		if score > bestScore {
			winnerUserID, winnerMessageID, winnerURL = sub.UserID, sub.MessageID, sub.URL
			bestScore = score
		}
	}
	winnerScore := bestScore
	if winnerScore < 0 {
		winnerScore = 0
	}

	// The terminal transition commits before anything is announced so
	// a crash past this point never re-processes the round.
	ended, err := m.store.MarkRoundEnded(r.ID, winnerUserID, winnerMessageID, winnerScore)
	if err != nil {
		return err
	}
	if !ended {
		return nil
	}
	r.Status = types.RoundEnded

	var announcement string
	if winnerUserID != "" {
		announcement = fmt.Sprintf("%s **Top Track Drop** by <@%s> with **%d** %s\n%s",
			VoteEmoji, winnerUserID, winnerScore, VoteEmoji, winnerURL)
	} else {
		announcement = "No valid submissions this round. Try again tomorrow 🎵"
	}

	annID, err := m.gateway.WebhookSend(webhookURL, announcement, SendOptions{MentionUsers: true})
	if err != nil {
		log.Printf("round %d: winner announcement failed: %v", r.ID, err)
	} else if annID != "" {
		if err := m.store.SetWinnersMessage(r.ID, annID); err != nil {
			log.Printf("round %d: failed to store winners message id: %v", r.ID, err)
		}
	}

	if _, err := m.gateway.WebhookSend(webhookURL, "Thanks for dropping! See you tomorrow 🎵", SendOptions{ThreadID: r.ThreadID}); err != nil {
		log.Printf("round %d: closing message failed: %v", r.ID, err)
	}

	m.publisher.Publish(context.Background(), "round.ended", map[string]interface{}{
		"round_id":     r.ID,
		"guild_id":     r.GuildID,
		"winner_user":  winnerUserID,
		"winner_score": winnerScore,
	})

	m.deferLockAndArchive(r.ThreadID)
	return nil
}

// ForceEnd clamps the round's end time to now and runs the normal end
// path.
func (m *Manager) ForceEnd(r *types.Round) error {
	if err := m.store.ForceEndTime(r.ID, m.clock.Now().Unix()); err != nil {
		return err
	}
	fresh, err := m.store.FetchRound(r.ID)
	if err != nil {
		return err
	}
	return m.EndRound(fresh)
}

// deferLockAndArchive freezes the thread after the grace delay so
// discussion can wind down first. Fire-and-forget: not persisted, lost
// on restart.
func (m *Manager) deferLockAndArchive(threadID string) {
	go func() {
		time.Sleep(m.graceDelay)
		if err := m.gateway.EditThread(threadID, true, true); err == nil {
			return
		}
		if err := m.gateway.EditThread(threadID, true, false); err != nil {
			log.Printf("round: failed to lock thread %s after grace period: %v", threadID, err)
		}
	}()
}
