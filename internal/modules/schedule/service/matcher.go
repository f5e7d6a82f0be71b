package service

import (
	"fmt"
	"time"

	"anoa.com/practiceforum/internal/entity"
	"anoa.com/practiceforum/pkg/clock"
)

// FireTolerance is how far a tick may land from the configured local time and still fire.
const FireTolerance = time.Minute

// ParseTimeOfDay parses a 24h "HH:MM" value.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Match reports whether now falls within FireTolerance of the schedule's
// local time on a day that starts its period, and returns that local
// firing instant. Yesterday and tomorrow are checked too so a tick just
// across local midnight still matches a 00:00 or 23:59 schedule.
func Match(s *entity.CommunitySchedule, now time.Time) (time.Time, bool) {
	hour, minute, err := ParseTimeOfDay(s.Time)
	if err != nil {
		return time.Time{}, false
	}

	loc := clock.Location(s.Timezone)
	local := now.In(loc)

	for _, offset := range []int{0, -1, 1} {
		y, m, d := local.AddDate(0, 0, offset).Date()
		candidate := time.Date(y, m, d, hour, minute, 0, 0, loc)

		diff := now.Sub(candidate)
		if diff < -FireTolerance || diff > FireTolerance {
			continue
		}
		if isPeriodStart(s.Period, candidate) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// isPeriodStart: weekly schedules run on Mondays, monthly on the 1st.
func isPeriodStart(period entity.SchedulePeriod, local time.Time) bool {
	switch period {
	case entity.PeriodDaily, "":
		return true
	case entity.PeriodWeekly:
		return local.Weekday() == time.Monday
	case entity.PeriodMonthly:
		return local.Day() == 1
	}
	return false
}

// PeriodBucketKey names the period containing instant, in the schedule's timezone:
// "2006-01-02" daily, "2006-W01" (ISO week) weekly and "2006-01" monthly.
func PeriodBucketKey(s *entity.CommunitySchedule, instant time.Time) string {
	local := instant.In(clock.Location(s.Timezone))

	switch s.Period {
	case entity.PeriodWeekly:
		year, week := local.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case entity.PeriodMonthly:
		return local.Format("2006-01")
	default:
		return local.Format("2006-01-02")
	}
}

// ShouldFire combines Match with the idempotency guard: latest is the most
// recent auto-generated block of the community, nil when there is none.
func ShouldFire(s *entity.CommunitySchedule, now time.Time, latest *entity.Block) (string, bool) {
	at, ok := Match(s, now)
	if !ok {
		return "", false
	}

	bucket := PeriodBucketKey(s, at)
	if latest != nil && latest.BucketKey != nil && *latest.BucketKey == bucket {
		return bucket, false
	}
	return bucket, true
}

// NextFire is the next local firing instant strictly after now, or false
// when the schedule's time cannot be parsed.
func NextFire(s *entity.CommunitySchedule, now time.Time) (time.Time, bool) {
	hour, minute, err := ParseTimeOfDay(s.Time)
	if err != nil {
		return time.Time{}, false
	}

	local := now.In(clock.Location(s.Timezone))
	// A monthly schedule fires at most 31 days out.
	for offset := 0; offset <= 32; offset++ {
		y, m, d := local.AddDate(0, 0, offset).Date()
		candidate := time.Date(y, m, d, hour, minute, 0, 0, local.Location())
		if candidate.After(now) && isPeriodStart(s.Period, candidate) {
			return candidate, true
		}
	}
	return time.Time{}, false
}
