package service

import (
	"math"
	"strings"
	"time"

	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// parseDateTime combines a date and time string into a UTC timestamp. A
// missing time defaults to midnight; a 5-character "HH:MM" gets ":00"
// appended.
func parseDateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}
	if len(clock) == 5 {
		clock += ":00"
	}

	ts, err := time.ParseInLocation(dateTimeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, pricingdomain.ErrUnparseableDateTime
	}
	return ts, nil
}

func buildDuration(entry, exit time.Time) pricingdomain.Duration {
	total := int(math.Round(exit.Sub(entry).Minutes()))
	return pricingdomain.Duration{
		Hours:        total / 60,
		Minutes:      total % 60,
		TotalMinutes: total,
	}
}

// hourlyFractions converts a stay in minutes to billable hour fractions:
// every started hour past the courtesy allowance bills, and any positive
// stay bills at least one fraction.
func hourlyFractions(minutes, courtesyMinutes int) int {
	fractions := minutes / 60
	if minutes%60 > courtesyMinutes {
		fractions++
	}
	if fractions < 1 {
		fractions = 1
	}
	return fractions
}

// resolveCourtesy applies the allowance resolution order: explicit
// override, rate column, rate config, engine default.
func resolveCourtesy(rate *ratedomain.Rate, cfg pricingdomain.RateConfig, opts *pricingdomain.Options, fallback int) int {
	if opts != nil && opts.CourtesyMinutes != nil {
		return *opts.CourtesyMinutes
	}
	if rate.CourtesyMinutes > 0 {
		return rate.CourtesyMinutes
	}
	if cfg.CourtesyMinutes > 0 {
		return cfg.CourtesyMinutes
	}
	return fallback
}

func ceilDays(minutes int) int {
	days := (minutes + minutesPerDay - 1) / minutesPerDay
	if days < 1 {
		days = 1
	}
	return days
}
