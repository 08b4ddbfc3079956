// Package domain contains the billing-rate configuration models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Rate is a priced billing policy for a vehicle type. Its Config column is
// free-form JSON maintained by the rate administration surface; the pricing
// engine parses it defensively.
type Rate struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"type:text;uniqueIndex" json:"code"`
	Name            string         `gorm:"type:text;not null" json:"name"`
	VehicleType     string         `gorm:"type:text;not null;index" json:"vehicle_type"`
	RateType        string         `gorm:"type:text;not null" json:"rate_type"`
	ValueCents      int64          `gorm:"not null" json:"value_cents"`
	CourtesyMinutes int            `gorm:"not null;default:0" json:"courtesy_minutes"`
	Config          datatypes.JSON `gorm:"type:jsonb" json:"config,omitempty"`
	Active          bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (Rate) TableName() string { return "rates" }

// TimeWindow is a recurring time span attached to one rate. EndTime may be
// empty, in which case DurationLimitMinutes (or a full day) bounds the
// window. StartDay/EndDay are week-relative offsets used by weekly and
// biweekly windows.
type TimeWindow struct {
	ID                   snowflake.ID  `gorm:"primaryKey" json:"id"`
	RateID               snowflake.ID  `gorm:"not null;index" json:"rate_id"`
	WindowType           string        `gorm:"type:text;not null" json:"window_type"`
	StartTime            string        `gorm:"type:text;not null" json:"start_time"`
	EndTime              string        `gorm:"type:text" json:"end_time,omitempty"`
	DurationLimitMinutes *int          `json:"duration_limit_minutes,omitempty"`
	ExtraRateID          *snowflake.ID `gorm:"index" json:"extra_rate_id,omitempty"`
	StartDay             *int          `json:"start_day,omitempty"`
	EndDay               *int          `json:"end_day,omitempty"`
	Active               bool          `gorm:"not null;default:true" json:"active"`
	CreatedAt            time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"not null" json:"updated_at"`
}

func (TimeWindow) TableName() string { return "rate_time_windows" }

// RateThreshold configures "if the cost under the source rate reaches the
// threshold amount, evaluate the target rate as an alternative".
type RateThreshold struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	SourceRateID   snowflake.ID `gorm:"not null;index" json:"source_rate_id"`
	TargetRateID   snowflake.ID `gorm:"not null" json:"target_rate_id"`
	ThresholdCents int64        `gorm:"not null" json:"threshold_cents"`
	AutoApply      bool         `gorm:"not null;default:false" json:"auto_apply"`
	Active         bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

func (RateThreshold) TableName() string { return "rate_thresholds" }

// PricingRule rows are fetched into the calculation context alongside
// windows and thresholds. The calculators do not consume them; the column
// set is carried for the rate administration surface only.
type PricingRule struct {
	ID                   snowflake.ID   `gorm:"primaryKey" json:"id"`
	RateID               snowflake.ID   `gorm:"not null;index" json:"rate_id"`
	Name                 string         `gorm:"type:text;not null" json:"name"`
	ValueAdjustmentCents int64          `gorm:"not null;default:0" json:"value_adjustment_cents"`
	Conditions           datatypes.JSON `gorm:"type:jsonb" json:"conditions,omitempty"`
	Active               bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
}

func (PricingRule) TableName() string { return "pricing_rules" }
