package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trackclub/dropbot/src/dropbot/components/round"
	"github.com/trackclub/dropbot/src/dropbot/components/timeutil"
	"github.com/trackclub/dropbot/src/dropbot/data"
	"github.com/trackclub/dropbot/src/dropbot/types"
)

type Config struct {
	Store   *data.Store
	Manager *round.Manager
	Gateway round.Gateway
	Redis   *redis.Client
	Clock   timeutil.Clock
	// Interval between ticks; defaults to 20s.
	Interval time.Duration
	// PromptOverride replaces the default prompt on daily rounds.
	PromptOverride string
}

// Scheduler drives all round transitions: it closes overdue rounds
// and fires the randomized daily auto-start. One instance per process.
type Scheduler struct {
	config Config
}

func New(config Config) *Scheduler {
	if config.Clock == nil {
		config.Clock = timeutil.System()
	}
	if config.Interval == 0 {
		config.Interval = 20 * time.Second
	}
	return &Scheduler{config: config}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Starting round scheduler")
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping round scheduler")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduler pass. Split out from Start so it can be
// driven directly.
func (s *Scheduler) Tick(ctx context.Context) {
	s.closeOverdueRounds()
	s.runDailyStarts(ctx)
}

// closeOverdueRounds ends every running round whose end time has
// passed. Rounds left running across a restart are picked up here;
// that is the recovery mechanism.
func (s *Scheduler) closeOverdueRounds() {
	now := s.config.Clock.Now().Unix()
	overdue, err := s.config.Store.ListRunningRoundsPastEnd(now)
	if err != nil {
		log.Printf("scheduler: overdue query failed: %v", err)
		return
	}
	for i := range overdue {
		r := overdue[i]
		if err := s.config.Manager.EndRound(&r); err != nil {
			log.Printf("scheduler: failed ending round %d: %v", r.ID, err)
		}
	}
}

func (s *Scheduler) runDailyStarts(ctx context.Context) {
	now := s.config.Clock.Now()
	hhmmNow := timeutil.HHMM(now)

	rows, err := s.config.Store.ListDailyAutoStartDue()
	if err != nil {
		log.Printf("scheduler: daily settings query failed: %v", err)
		return
	}

	for i := range rows {
		gs := rows[i]
		if err := s.dailyStart(ctx, &gs, now, hhmmNow); err != nil {
			log.Printf("scheduler: daily start failed for guild %s: %v", gs.GuildID, err)
		}
	}
}

func (s *Scheduler) dailyStart(ctx context.Context, gs *types.GuildSettings, now time.Time, hhmmNow string) error {
	scheduled, err := s.EnsureTodaySchedule(gs, now)
	if err != nil {
		return err
	}
	if scheduled != hhmmNow {
		return nil
	}

	running, err := s.config.Store.GetRunningRound(gs.GuildID)
	if err != nil {
		return err
	}
	if running != nil {
		return nil
	}

	dayStart, dayEnd := timeutil.DayBounds(now)
	started, err := s.config.Store.HasRoundStartedToday(gs.GuildID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if started {
		return nil
	}

	if !s.acquireDailyLock(ctx, gs.GuildID, timeutil.DayString(now)) {
		return nil
	}

	if err := s.config.Gateway.ResolveChannel(gs.ChannelID); err != nil {
		return fmt.Errorf("resolve channel %s: %w", gs.ChannelID, err)
	}

	_, err = s.config.Manager.StartRound(gs.GuildID, gs.ChannelID,
		s.config.PromptOverride, gs.DurationSeconds, gs.PingRoleID)
	return err
}

// EnsureTodaySchedule returns today's scheduled HH:MM, drawing and
// persisting a fresh random time the first time each UTC day asks.
// Explicit write path, not a side effect of reading settings.
func (s *Scheduler) EnsureTodaySchedule(gs *types.GuildSettings, now time.Time) (string, error) {
	today := timeutil.DayString(now)
	if _, _, ok := timeutil.ParseHHMM(gs.DailyHHMM); ok && gs.DailyRandomDate == today {
		return gs.DailyHHMM, nil
	}

	scheduled := timeutil.RandomDailyHHMM()
	err := s.config.Store.UpdateSettings(gs.GuildID, map[string]interface{}{
		"daily_hhmm_utc":        scheduled,
		"daily_random_date_utc": today,
	})
	if err != nil {
		return "", err
	}
	gs.DailyHHMM = scheduled
	gs.DailyRandomDate = today
	return scheduled, nil
}

// acquireDailyLock takes a per-guild per-day advisory lock so two
// near-simultaneous ticks cannot both start a round. Without redis the
// store-level checks alone decide.
func (s *Scheduler) acquireDailyLock(ctx context.Context, guildID, day string) bool {
	if s.config.Redis == nil {
		return true
	}
	key := fmt.Sprintf("dropbot:dailystart:%s:%s", guildID, day)
	ok, err := s.config.Redis.SetNX(ctx, key, "1", 26*time.Hour).Result()
	if err != nil {
		log.Printf("scheduler: daily lock for guild %s unavailable: %v", guildID, err)
		return true
	}
	return ok
}
