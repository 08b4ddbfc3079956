package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
)

var (
	// ErrInvalidTemporalRange reports an exit that is not strictly after
	// the entry.
	ErrInvalidTemporalRange = errors.New("exit must be after entry")
	// ErrUnparseableDateTime reports a date/time pair that does not form a
	// valid calendar moment.
	ErrUnparseableDateTime = errors.New("unparseable date/time")
	// ErrDataAccess wraps any configuration-store read failure. It is
	// terminal: no retry, no default substitution.
	ErrDataAccess = errors.New("rate configuration read failed")
	// ErrMissingRate reports a calculation invoked without a rate.
	ErrMissingRate = errors.New("rate is required")
)

// ConfigStore is the read-only rate configuration collaborator. All reads
// are simple equality or membership filters.
type ConfigStore interface {
	GetRate(ctx context.Context, id snowflake.ID) (*ratedomain.Rate, error)
	FindRate(ctx context.Context, filter ratedomain.FindRateFilter) (*ratedomain.Rate, error)
	GetRatesByIDs(ctx context.Context, ids []snowflake.ID) ([]ratedomain.Rate, error)
	GetActiveTimeWindows(ctx context.Context, rateID snowflake.ID) ([]ratedomain.TimeWindow, error)
	GetThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]ratedomain.RateThreshold, error)
	GetActivePricingRules(ctx context.Context, rateID snowflake.ID) ([]ratedomain.PricingRule, error)
}

// Service is the engine's public surface.
type Service interface {
	CalculateAdvancedPrice(ctx context.Context, ticket Ticket, rate *ratedomain.Rate, exitDate, exitTime string, opts *Options) (*PriceResult, error)
}
