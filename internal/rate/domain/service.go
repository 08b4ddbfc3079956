package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrRateNotFound    = errors.New("rate not found")
	ErrInvalidRateType = errors.New("invalid rate type")
	ErrInvalidValue    = errors.New("rate value must be positive")
	ErrDuplicateCode   = errors.New("rate code already exists")
)

type CreateRateRequest struct {
	Name            string `json:"name" binding:"required"`
	VehicleType     string `json:"vehicle_type" binding:"required"`
	RateType        string `json:"rate_type" binding:"required"`
	ValueCents      int64  `json:"value_cents" binding:"required"`
	CourtesyMinutes int    `json:"courtesy_minutes"`
	Config          []byte `json:"config,omitempty"`
}

type UpdateRateRequest struct {
	Name            *string `json:"name,omitempty"`
	ValueCents      *int64  `json:"value_cents,omitempty"`
	CourtesyMinutes *int    `json:"courtesy_minutes,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

type CreateTimeWindowRequest struct {
	WindowType           string        `json:"window_type" binding:"required"`
	StartTime            string        `json:"start_time" binding:"required"`
	EndTime              string        `json:"end_time"`
	DurationLimitMinutes *int          `json:"duration_limit_minutes,omitempty"`
	ExtraRateID          *snowflake.ID `json:"extra_rate_id,omitempty"`
	StartDay             *int          `json:"start_day,omitempty"`
	EndDay               *int          `json:"end_day,omitempty"`
}

type CreateThresholdRequest struct {
	TargetRateID   snowflake.ID `json:"target_rate_id" binding:"required"`
	ThresholdCents int64        `json:"threshold_cents" binding:"required"`
	AutoApply      bool         `json:"auto_apply"`
}

// Service is the rate administration surface.
type Service interface {
	Create(ctx context.Context, req CreateRateRequest) (*Rate, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRateRequest) (*Rate, error)
	Get(ctx context.Context, id snowflake.ID) (*Rate, error)
	List(ctx context.Context, filter ListRatesFilter) ([]Rate, error)
	AddTimeWindow(ctx context.Context, rateID snowflake.ID, req CreateTimeWindowRequest) (*TimeWindow, error)
	ListTimeWindows(ctx context.Context, rateID snowflake.ID) ([]TimeWindow, error)
	AddThreshold(ctx context.Context, sourceRateID snowflake.ID, req CreateThresholdRequest) (*RateThreshold, error)
	ListThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]RateThreshold, error)
}
