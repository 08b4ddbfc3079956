package service

import (
	"strconv"
	"strings"
	"time"

	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
)

const minutesPerDay = 24 * 60

// windowInstance is a time window materialized onto one calendar day as a
// concrete [start, end) interval.
type windowInstance struct {
	start time.Time
	end   time.Time
}

// materializeWindow instantiates a window for the day starting at dayStart.
// An end time at or before the start models a midnight-crossing window and
// is advanced one day; absent an end time, the duration limit bounds the
// window, else a full day does.
func materializeWindow(w ratedomain.TimeWindow, dayStart time.Time) windowInstance {
	start := dayStart.Add(time.Duration(clockMinutes(w.StartTime)) * time.Minute)

	var end time.Time
	switch {
	case strings.TrimSpace(w.EndTime) != "":
		end = dayStart.Add(time.Duration(clockMinutes(w.EndTime)) * time.Minute)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
	case w.DurationLimitMinutes != nil && *w.DurationLimitMinutes > 0:
		end = start.Add(time.Duration(*w.DurationLimitMinutes) * time.Minute)
	default:
		end = start.AddDate(0, 0, 1)
	}

	return windowInstance{start: start, end: end}
}

// minutesOverlap returns the whole minutes the stay [entry, exit) shares
// with [start, end), zero when disjoint.
func minutesOverlap(entry, exit, start, end time.Time) int {
	s := entry
	if start.After(s) {
		s = start
	}
	e := exit
	if end.Before(e) {
		e = end
	}
	if !e.After(s) {
		return 0
	}
	return int(e.Sub(s) / time.Minute)
}

// computePeriodLimit returns the minutes a weekly or biweekly window covers
// within its period. An explicit duration limit wins; otherwise the limit
// derives from the day/time offsets, wrapping forward by periodDays when
// the computed end precedes the start.
func computePeriodLimit(w *ratedomain.TimeWindow, periodDays int) int {
	if w == nil {
		return periodDays * minutesPerDay
	}
	if w.DurationLimitMinutes != nil && *w.DurationLimitMinutes > 0 {
		return *w.DurationLimitMinutes
	}

	startDay, endDay := 0, 0
	if w.StartDay != nil {
		startDay = *w.StartDay
	}
	if w.EndDay != nil {
		endDay = *w.EndDay
	}
	if startDay == 0 && endDay == 0 && strings.TrimSpace(w.EndTime) == "" {
		return periodDays * minutesPerDay
	}

	startOffset := startDay*minutesPerDay + clockMinutes(w.StartTime)
	endOffset := endDay*minutesPerDay + clockMinutes(w.EndTime)
	if endOffset <= startOffset {
		endOffset += periodDays * minutesPerDay
	}
	return endOffset - startOffset
}

// groupWindowsByType buckets active windows by their classified kind.
// Unclassifiable windows land in no bucket: callers treat an empty bucket
// as "use the rate's flat default".
func groupWindowsByType(windows []ratedomain.TimeWindow) map[pricingdomain.WindowKind][]ratedomain.TimeWindow {
	grouped := make(map[pricingdomain.WindowKind][]ratedomain.TimeWindow)
	for _, w := range windows {
		if !w.Active {
			continue
		}
		kind := pricingdomain.ClassifyWindow(w.WindowType)
		if kind == pricingdomain.WindowKindUnknown {
			continue
		}
		grouped[kind] = append(grouped[kind], w)
	}
	return grouped
}

// clockMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Unparseable values count as midnight.
func clockMinutes(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 {
		return 0
	}
	return h*60 + m
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
