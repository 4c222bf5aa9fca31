package timeutil

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// Clock provides "now" so the engine and scheduler can be driven by a
// fake in tests. All game timestamps are UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

var hhmmRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseHHMM validates a "HH:MM" label. Returns false on anything that
// is not a real time of day.
func ParseHHMM(s string) (hh, mm int, ok bool) {
	m := hhmmRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	fmt.Sscanf(m[1], "%d", &hh)
	fmt.Sscanf(m[2], "%d", &mm)
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

// HHMM formats t as the "HH:MM" UTC label the scheduler compares
// against scheduled start times.
func HHMM(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DayString formats t as the UTC calendar date ("YYYY-MM-DD").
func DayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayBounds returns the [start, end) unix bounds of t's UTC calendar
// day. Computed in Go rather than SQL DATE() so the same query runs on
// MySQL and the sqlite test driver.
func DayBounds(t time.Time) (start, end int64) {
	t = t.UTC()
	s := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return s.Unix(), s.Add(24 * time.Hour).Unix()
}

// RandomDailyHHMM draws the day's start time uniformly from the
// 08:00-19:00 UTC window.
func RandomDailyHHMM() string {
	minute := 8*60 + rand.Intn(11*60+1)
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Humanize renders a duration in the short form used in prompts and
// status replies ("45s", "10 min", "1h 30m", "2d").
func Humanize(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	mins, rem := seconds/60, seconds%60
	if mins < 60 {
		if rem == 0 {
			return fmt.Sprintf("%d min", mins)
		}
		return fmt.Sprintf("%d min %ds", mins, rem)
	}
	hrs, mins := mins/60, mins%60
	if hrs < 24 {
		if mins == 0 {
			return fmt.Sprintf("%dh", hrs)
		}
		return fmt.Sprintf("%dh %dm", hrs, mins)
	}
	days, hrs := hrs/24, hrs%24
	if hrs == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd %dh", days, hrs)
}
