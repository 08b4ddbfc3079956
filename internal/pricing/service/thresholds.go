package service

import (
	"context"
	"time"

	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
)

// thresholdOutcome pairs an emitted suggestion with the nested calculation
// it was priced from, so auto-apply can adopt the target's result wholesale.
type thresholdOutcome struct {
	suggestion pricingdomain.Suggestion
	result     *pricingdomain.PriceResult
}

// evaluateThresholds recursively prices every actionable threshold whose
// base total meets the configured amount. Suggestions are emitted
// regardless of whether the alternative actually saves money; the visited
// set in the cache breaks threshold cycles between rates.
func (s *Service) evaluateThresholds(
	ctx context.Context,
	cache *calcCache,
	rc *rateContext,
	baseTotal int64,
	vehicleType string,
	entry, exit time.Time,
	opts *pricingdomain.Options,
) ([]thresholdOutcome, error) {
	var outcomes []thresholdOutcome
	for _, t := range rc.thresholds {
		if baseTotal < t.row.ThresholdCents {
			continue
		}
		if cache.visited[t.target.ID] {
			continue
		}

		nested, err := s.calculate(ctx, cache, t.target, vehicleType, entry, exit, opts)
		if err != nil {
			return nil, err
		}

		outcomes = append(outcomes, thresholdOutcome{
			suggestion: pricingdomain.Suggestion{
				RateID:            t.target.ID,
				RateType:          pricingdomain.ParseRateType(t.target.RateType),
				ThresholdCents:    t.row.ThresholdCents,
				TargetPriceCents:  nested.PriceCents,
				CurrentPriceCents: baseTotal,
				SavingsCents:      baseTotal - nested.PriceCents,
				AutoApply:         t.row.AutoApply,
			},
			result: nested,
		})
	}
	return outcomes, nil
}

// selectAutoApply picks, among auto-apply suggestions that undercut the
// base total, the one with the lowest target price. Ties resolve to
// evaluation order.
func selectAutoApply(outcomes []thresholdOutcome, baseTotal int64) *thresholdOutcome {
	var best *thresholdOutcome
	for i := range outcomes {
		o := &outcomes[i]
		if !o.suggestion.AutoApply {
			continue
		}
		if o.suggestion.TargetPriceCents >= baseTotal {
			continue
		}
		if best == nil || o.suggestion.TargetPriceCents < best.suggestion.TargetPriceCents {
			best = o
		}
	}
	return best
}
