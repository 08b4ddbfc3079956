package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type FindRateFilter struct {
	VehicleType string
	RateType    string
}

type ListRatesFilter struct {
	VehicleType string `form:"vehicle_type"`
	RateType    string `form:"rate_type"`
	ActiveOnly  bool   `form:"active_only"`
}

// Repository is the rate configuration store. The read side doubles as the
// pricing engine's collaborator: plain equality and membership filters, no
// transactional semantics.
type Repository interface {
	GetRate(ctx context.Context, id snowflake.ID) (*Rate, error)
	FindRate(ctx context.Context, filter FindRateFilter) (*Rate, error)
	GetRatesByIDs(ctx context.Context, ids []snowflake.ID) ([]Rate, error)
	GetActiveTimeWindows(ctx context.Context, rateID snowflake.ID) ([]TimeWindow, error)
	GetThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]RateThreshold, error)
	GetActivePricingRules(ctx context.Context, rateID snowflake.ID) ([]PricingRule, error)

	InsertRate(ctx context.Context, rate *Rate) error
	UpdateRate(ctx context.Context, rate *Rate) error
	ListRates(ctx context.Context, filter ListRatesFilter) ([]Rate, error)
	InsertTimeWindow(ctx context.Context, window *TimeWindow) error
	ListTimeWindows(ctx context.Context, rateID snowflake.ID) ([]TimeWindow, error)
	InsertThreshold(ctx context.Context, threshold *RateThreshold) error
	ListThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]RateThreshold, error)
}
