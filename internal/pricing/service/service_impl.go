package service

import (
	"context"
	"time"

	"github.com/vagaparlabs/vagapark/internal/config"
	"github.com/vagaparlabs/vagapark/internal/observability"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	store   pricingdomain.ConfigStore
	metrics *observability.Metrics

	defaultCourtesy  int
	autoApplyEnabled bool
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Store   pricingdomain.ConfigStore
	Config  config.Config
	Metrics *observability.Metrics `optional:"true"`
}

func NewService(p ServiceParam) pricingdomain.Service {
	return &Service{
		log:     p.Log.Named("pricing.service"),
		store:   p.Store,
		metrics: p.Metrics,

		defaultCourtesy:  p.Config.Pricing.DefaultCourtesyMinutes,
		autoApplyEnabled: p.Config.Pricing.AutoApplyEnabled,
	}
}

// CalculateAdvancedPrice validates the temporal inputs, prices the caller's
// rate, evaluates its thresholds and assembles the final result. The
// per-calculation cache lives exactly as long as this call, nested
// threshold evaluations included.
func (s *Service) CalculateAdvancedPrice(
	ctx context.Context,
	ticket pricingdomain.Ticket,
	rate *ratedomain.Rate,
	exitDate, exitTime string,
	opts *pricingdomain.Options,
) (*pricingdomain.PriceResult, error) {
	if rate == nil {
		return nil, pricingdomain.ErrMissingRate
	}

	entry, err := parseDateTime(ticket.EntryDate, ticket.EntryTime)
	if err != nil {
		return nil, err
	}
	exit, err := parseDateTime(exitDate, exitTime)
	if err != nil {
		return nil, err
	}
	if !exit.After(entry) {
		return nil, pricingdomain.ErrInvalidTemporalRange
	}

	cache := newCalcCache()
	result, err := s.calculate(ctx, cache, rate, ticket.VehicleType, entry, exit, opts)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Calculations.WithLabelValues(string(result.AppliedRate.Type)).Inc()
		s.metrics.Suggestions.Add(float64(len(result.Suggestions)))
		if result.AutoApplied != nil {
			s.metrics.AutoApplies.Inc()
		}
	}

	s.log.Debug("price calculated",
		zap.String("rate_id", rate.ID.String()),
		zap.Int64("price_cents", result.PriceCents),
		zap.Int("total_minutes", result.Duration.TotalMinutes),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.Bool("auto_applied", result.AutoApplied != nil),
	)
	return result, nil
}

// calculate prices one rate and its thresholds. It recurses through
// threshold targets, sharing the cache, and is the body behind both the
// public entry point and nested evaluations.
func (s *Service) calculate(
	ctx context.Context,
	cache *calcCache,
	rate *ratedomain.Rate,
	vehicleType string,
	entry, exit time.Time,
	opts *pricingdomain.Options,
) (*pricingdomain.PriceResult, error) {
	rc, err := s.buildContext(ctx, cache, rate, vehicleType)
	if err != nil {
		return nil, err
	}

	cache.visited[rate.ID] = true

	ch := priceCharge(rc, entry, exit, opts, s.defaultCourtesy)
	baseTotal := ch.total()

	outcomes, err := s.evaluateThresholds(ctx, cache, rc, baseTotal, vehicleType, entry, exit, opts)
	if err != nil {
		return nil, err
	}

	result := &pricingdomain.PriceResult{
		PriceCents:  baseTotal,
		Duration:    buildDuration(entry, exit),
		Breakdown:   ch.breakdown,
		Extras:      ch.extras,
		AppliedRate: pricingdomain.AppliedRate{ID: rate.ID, Type: rc.rateType},
		Suggestions: make([]pricingdomain.Suggestion, 0, len(outcomes)),
		Base: pricingdomain.BaseCalculation{
			PriceCents: baseTotal,
			Breakdown:  ch.breakdown,
			Extras:     ch.extras,
		},
	}
	for _, o := range outcomes {
		result.Suggestions = append(result.Suggestions, o.suggestion)
	}

	autoApplyAllowed := s.autoApplyEnabled && (opts == nil || !opts.DisableAutoApply)
	if autoApplyAllowed {
		if best := selectAutoApply(outcomes, baseTotal); best != nil {
			result.PriceCents = best.result.PriceCents
			result.Breakdown = best.result.Breakdown
			result.Extras = best.result.Extras
			result.AppliedRate = pricingdomain.AppliedRate{
				ID:   best.suggestion.RateID,
				Type: best.suggestion.RateType,
			}
			result.AutoApplied = &pricingdomain.AutoApplied{
				FromRateID: rate.ID,
				ToRateID:   best.suggestion.RateID,
			}
		}
	}

	return result, nil
}
