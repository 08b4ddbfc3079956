// Package domain defines the pricing engine's types: the closed rate-type
// and window-kind enums, calculation inputs, and the audited price result.
package domain

import (
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
)

// RateType is the closed set of billing semantics. Free-form rate labels
// (bilingual, accented) are folded into it once at the input boundary.
type RateType string

const (
	RateTypeHourly    RateType = "hourly"
	RateTypeDaily     RateType = "daily"
	RateTypeOvernight RateType = "overnight"
	RateTypeWeekly    RateType = "weekly"
	RateTypeBiweekly  RateType = "biweekly"
	RateTypeMonthly   RateType = "monthly"
	RateTypeFallback  RateType = "fallback"
	RateTypeUnknown   RateType = "unknown"
)

// NormalizeText folds case, diacritics and separators so that bilingual
// labels ("Diária", "daily", "Bi-Weekly") compare equal by substring.
func NormalizeText(s string) string {
	return strings.ReplaceAll(slug.Make(s), "-", "")
}

// ParseRateType classifies a raw rate-type label. Biweekly is matched
// before weekly because "biweekly" contains "weekly".
func ParseRateType(raw string) RateType {
	n := NormalizeText(raw)
	switch {
	case n == "":
		return RateTypeUnknown
	case strings.Contains(n, "quinzenal") || strings.Contains(n, "biweekly"):
		return RateTypeBiweekly
	case strings.Contains(n, "semanal") || strings.Contains(n, "weekly"):
		return RateTypeWeekly
	case strings.Contains(n, "pernoite") || strings.Contains(n, "overnight"):
		return RateTypeOvernight
	case strings.Contains(n, "diaria") || strings.Contains(n, "diario") || strings.Contains(n, "daily"):
		return RateTypeDaily
	case strings.Contains(n, "mensal") || strings.Contains(n, "monthly"):
		return RateTypeMonthly
	case strings.Contains(n, "hora") || strings.Contains(n, "hour"):
		return RateTypeHourly
	case strings.Contains(n, "fallback") || strings.Contains(n, "avulsa") || strings.Contains(n, "flat"):
		return RateTypeFallback
	default:
		return RateTypeUnknown
	}
}

// WindowKind buckets a rate's time windows.
type WindowKind string

const (
	WindowKindDaily     WindowKind = "daily"
	WindowKindOvernight WindowKind = "overnight"
	WindowKindWeekly    WindowKind = "weekly"
	WindowKindBiweekly  WindowKind = "biweekly"
	WindowKindUnknown   WindowKind = "unknown"
)

// ClassifyWindow maps a raw window-type label to its kind. Windows that
// match no known category are excluded from every bucket.
func ClassifyWindow(raw string) WindowKind {
	n := NormalizeText(raw)
	switch {
	case n == "":
		return WindowKindUnknown
	case strings.Contains(n, "quinzenal") || strings.Contains(n, "biweekly"):
		return WindowKindBiweekly
	case strings.Contains(n, "semanal") || strings.Contains(n, "weekly"):
		return WindowKindWeekly
	case strings.Contains(n, "pernoite") || strings.Contains(n, "overnight"):
		return WindowKindOvernight
	case strings.Contains(n, "diaria") || strings.Contains(n, "daily"):
		return WindowKindDaily
	default:
		return WindowKindUnknown
	}
}

// RateConfig is the structured view of the free-form rates.config column.
// Only the fields the calculators consume are parsed; everything else in
// the column is ignored.
type RateConfig struct {
	CourtesyMinutes int `json:"courtesyMinutes"`
	PeriodDays      int `json:"periodDays"`
}

// ParseRateConfig tolerates malformed JSON: a rate with a broken config
// still prices using defaults rather than blocking checkout.
func ParseRateConfig(raw []byte) RateConfig {
	var cfg RateConfig
	if len(raw) == 0 {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return RateConfig{}
	}
	return cfg
}

// Ticket is the calculation input for a parked vehicle.
type Ticket struct {
	VehicleType string `json:"vehicle_type"`
	EntryDate   string `json:"entry_date"`
	EntryTime   string `json:"entry_time"`
}

// Options tune one calculation. CourtesyMinutes overrides the rate's own
// allowance; DisableAutoApply keeps suggestions advisory.
type Options struct {
	CourtesyMinutes  *int `json:"courtesy_minutes,omitempty"`
	DisableAutoApply bool `json:"disable_auto_apply,omitempty"`
}

type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

// LineItem is one independently summable entry of the audit trail. The sum
// of all breakdown and extra line amounts always equals the total price.
type LineItem struct {
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
	AmountCents int64  `json:"amount_cents"`
	Minutes     int    `json:"minutes,omitempty"`
}

type Suggestion struct {
	RateID            snowflake.ID `json:"rate_id"`
	RateType          RateType     `json:"rate_type"`
	ThresholdCents    int64        `json:"threshold_cents"`
	TargetPriceCents  int64        `json:"target_price_cents"`
	CurrentPriceCents int64        `json:"current_price_cents"`
	SavingsCents      int64        `json:"savings_cents"`
	AutoApply         bool         `json:"auto_apply"`
}

type AutoApplied struct {
	FromRateID snowflake.ID `json:"from_rate_id"`
	ToRateID   snowflake.ID `json:"to_rate_id"`
}

type AppliedRate struct {
	ID   snowflake.ID `json:"id"`
	Type RateType     `json:"type"`
}

// BaseCalculation preserves the un-adjusted result of the caller's rate so
// auto-applied switches stay auditable.
type BaseCalculation struct {
	PriceCents int64      `json:"price_cents"`
	Breakdown  []LineItem `json:"breakdown"`
	Extras     []LineItem `json:"extras"`
}

type PriceResult struct {
	PriceCents  int64           `json:"price_cents"`
	Duration    Duration        `json:"duration"`
	Breakdown   []LineItem      `json:"breakdown"`
	Extras      []LineItem      `json:"extras"`
	AppliedRate AppliedRate     `json:"applied_rate"`
	Suggestions []Suggestion    `json:"suggestions"`
	AutoApplied *AutoApplied    `json:"auto_applied,omitempty"`
	Base        BaseCalculation `json:"base_calculation"`
}
