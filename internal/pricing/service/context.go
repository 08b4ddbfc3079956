package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"golang.org/x/sync/errgroup"
)

// calcCache is the per-calculation memoization arena. It is created fresh
// for every top-level CalculateAdvancedPrice call, threaded through nested
// threshold evaluations, and discarded afterward. visited guards against
// threshold cycles between rates.
type calcCache struct {
	contexts        map[snowflake.ID]*rateContext
	hourlyByVehicle map[string]*ratedomain.Rate
	visited         map[snowflake.ID]bool
}

func newCalcCache() *calcCache {
	return &calcCache{
		contexts:        make(map[snowflake.ID]*rateContext),
		hourlyByVehicle: make(map[string]*ratedomain.Rate),
		visited:         make(map[snowflake.ID]bool),
	}
}

// resolvedThreshold pairs a threshold row with its resolved target rate.
// Only actionable thresholds (target found, target != source) are kept.
type resolvedThreshold struct {
	row    ratedomain.RateThreshold
	target *ratedomain.Rate
}

// rateContext assembles everything needed to price one rate.
type rateContext struct {
	rate       *ratedomain.Rate
	rateType   pricingdomain.RateType
	config     pricingdomain.RateConfig
	windows    map[pricingdomain.WindowKind][]ratedomain.TimeWindow
	thresholds []resolvedThreshold
	related    map[snowflake.ID]*ratedomain.Rate
	rules      []ratedomain.PricingRule

	// hourlyFallback prices overflow minutes when a window names no extra
	// rate of its own. May be nil.
	hourlyFallback *ratedomain.Rate
}

func (s *Service) buildContext(ctx context.Context, cache *calcCache, rate *ratedomain.Rate, vehicleType string) (*rateContext, error) {
	if rc, ok := cache.contexts[rate.ID]; ok {
		return rc, nil
	}

	var (
		windows    []ratedomain.TimeWindow
		thresholds []ratedomain.RateThreshold
		rules      []ratedomain.PricingRule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windows, err = s.store.GetActiveTimeWindows(gctx, rate.ID)
		return wrapDataAccess("load time windows", err)
	})
	g.Go(func() error {
		var err error
		thresholds, err = s.store.GetThresholds(gctx, rate.ID)
		return wrapDataAccess("load thresholds", err)
	})
	g.Go(func() error {
		var err error
		rules, err = s.store.GetActivePricingRules(gctx, rate.ID)
		return wrapDataAccess("load pricing rules", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	related, err := s.resolveRelatedRates(ctx, rate.ID, windows, thresholds)
	if err != nil {
		return nil, err
	}

	hourly, err := s.resolveHourlyRate(ctx, cache, vehicleType, related)
	if err != nil {
		return nil, err
	}

	rc := &rateContext{
		rate:           rate,
		rateType:       pricingdomain.ParseRateType(rate.RateType),
		config:         pricingdomain.ParseRateConfig(rate.Config),
		windows:        groupWindowsByType(windows),
		related:        related,
		rules:          rules,
		hourlyFallback: hourly,
	}

	for _, t := range thresholds {
		if t.TargetRateID == rate.ID {
			continue
		}
		target, ok := related[t.TargetRateID]
		if !ok {
			continue
		}
		rc.thresholds = append(rc.thresholds, resolvedThreshold{row: t, target: target})
	}

	cache.contexts[rate.ID] = rc
	return rc, nil
}

// resolveRelatedRates batch-fetches every rate referenced by a window's
// extra-rate pointer or a threshold's target exactly once.
func (s *Service) resolveRelatedRates(
	ctx context.Context,
	sourceID snowflake.ID,
	windows []ratedomain.TimeWindow,
	thresholds []ratedomain.RateThreshold,
) (map[snowflake.ID]*ratedomain.Rate, error) {
	seen := map[snowflake.ID]bool{sourceID: true}
	var ids []snowflake.ID
	for _, w := range windows {
		if w.ExtraRateID != nil && !seen[*w.ExtraRateID] {
			seen[*w.ExtraRateID] = true
			ids = append(ids, *w.ExtraRateID)
		}
	}
	for _, t := range thresholds {
		if !seen[t.TargetRateID] {
			seen[t.TargetRateID] = true
			ids = append(ids, t.TargetRateID)
		}
	}

	related := make(map[snowflake.ID]*ratedomain.Rate, len(ids))
	if len(ids) == 0 {
		return related, nil
	}

	rates, err := s.store.GetRatesByIDs(ctx, ids)
	if err != nil {
		return nil, wrapDataAccess("resolve related rates", err)
	}
	for i := range rates {
		related[rates[i].ID] = &rates[i]
	}
	return related, nil
}

// resolveHourlyRate finds the hourly rate used for overflow billing: first
// among the already-resolved related rates, then via a dedicated lookup.
// The resolution is memoized per vehicle type for the calculation.
func (s *Service) resolveHourlyRate(
	ctx context.Context,
	cache *calcCache,
	vehicleType string,
	related map[snowflake.ID]*ratedomain.Rate,
) (*ratedomain.Rate, error) {
	key := pricingdomain.NormalizeText(vehicleType)
	if hourly, ok := cache.hourlyByVehicle[key]; ok {
		return hourly, nil
	}

	// Map iteration order is not stable; prefer the lowest ID so repeated
	// calculations resolve the same fallback.
	var candidate *ratedomain.Rate
	for _, r := range related {
		if pricingdomain.ParseRateType(r.RateType) != pricingdomain.RateTypeHourly {
			continue
		}
		if pricingdomain.NormalizeText(r.VehicleType) != key {
			continue
		}
		if candidate == nil || r.ID < candidate.ID {
			candidate = r
		}
	}
	if candidate != nil {
		cache.hourlyByVehicle[key] = candidate
		return candidate, nil
	}

	hourly, err := s.store.FindRate(ctx, ratedomain.FindRateFilter{
		VehicleType: vehicleType,
		RateType:    string(pricingdomain.RateTypeHourly),
	})
	if err != nil {
		return nil, wrapDataAccess("find hourly fallback rate", err)
	}
	cache.hourlyByVehicle[key] = hourly
	return hourly, nil
}

func wrapDataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", pricingdomain.ErrDataAccess, op, err)
}
