package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"go.uber.org/zap"
)

type fakeStore struct {
	rates      map[snowflake.ID]*ratedomain.Rate
	windows    map[snowflake.ID][]ratedomain.TimeWindow
	thresholds map[snowflake.ID][]ratedomain.RateThreshold
	rules      map[snowflake.ID][]ratedomain.PricingRule
	hourly     map[string]*ratedomain.Rate

	windowCalls   int
	findRateCalls int
	windowsErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rates:      make(map[snowflake.ID]*ratedomain.Rate),
		windows:    make(map[snowflake.ID][]ratedomain.TimeWindow),
		thresholds: make(map[snowflake.ID][]ratedomain.RateThreshold),
		rules:      make(map[snowflake.ID][]ratedomain.PricingRule),
		hourly:     make(map[string]*ratedomain.Rate),
	}
}

func (s *fakeStore) GetRate(_ context.Context, id snowflake.ID) (*ratedomain.Rate, error) {
	return s.rates[id], nil
}

func (s *fakeStore) FindRate(_ context.Context, filter ratedomain.FindRateFilter) (*ratedomain.Rate, error) {
	s.findRateCalls++
	return s.hourly[filter.VehicleType], nil
}

func (s *fakeStore) GetRatesByIDs(_ context.Context, ids []snowflake.ID) ([]ratedomain.Rate, error) {
	var out []ratedomain.Rate
	for _, id := range ids {
		if r, ok := s.rates[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetActiveTimeWindows(_ context.Context, rateID snowflake.ID) ([]ratedomain.TimeWindow, error) {
	s.windowCalls++
	if s.windowsErr != nil {
		return nil, s.windowsErr
	}
	return s.windows[rateID], nil
}

func (s *fakeStore) GetThresholds(_ context.Context, sourceRateID snowflake.ID) ([]ratedomain.RateThreshold, error) {
	return s.thresholds[sourceRateID], nil
}

func (s *fakeStore) GetActivePricingRules(_ context.Context, rateID snowflake.ID) ([]ratedomain.PricingRule, error) {
	return s.rules[rateID], nil
}

func newTestService(store pricingdomain.ConfigStore) *Service {
	return &Service{
		log:              zap.NewNop(),
		store:            store,
		autoApplyEnabled: true,
	}
}

func carTicket() pricingdomain.Ticket {
	return pricingdomain.Ticket{VehicleType: "car", EntryDate: "2024-01-01", EntryTime: "08:00"}
}

func addRate(s *fakeStore, id int64, rateType string, valueCents int64, courtesy int) *ratedomain.Rate {
	r := &ratedomain.Rate{
		ID:              snowflake.ID(id),
		VehicleType:     "car",
		RateType:        rateType,
		ValueCents:      valueCents,
		CourtesyMinutes: courtesy,
		Active:          true,
	}
	s.rates[r.ID] = r
	return r
}

func assertSummable(t *testing.T, res *pricingdomain.PriceResult) {
	t.Helper()
	var sum int64
	for _, item := range res.Breakdown {
		sum += item.AmountCents
	}
	for _, item := range res.Extras {
		sum += item.AmountCents
	}
	assert.Equal(t, res.PriceCents, sum, "line items must sum to the total")
}

func TestHourlyScenarioA(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 10)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "10:05", nil)
	require.NoError(t, err)

	// 125 minutes, remainder 5 within courtesy: two fractions.
	assert.Equal(t, int64(2000), res.PriceCents)
	assert.Equal(t, 125, res.Duration.TotalMinutes)
	assertSummable(t, res)
}

func TestHourlyScenarioB(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 10)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "10:15", nil)
	require.NoError(t, err)

	// remainder 15 exceeds the 10-minute courtesy: three fractions.
	assert.Equal(t, int64(3000), res.PriceCents)
	assertSummable(t, res)
}

func TestHourlyCourtesyOverride(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 10)
	svc := newTestService(store)

	override := 20
	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "10:15",
		&pricingdomain.Options{CourtesyMinutes: &override})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.PriceCents)
}

func TestMonthlyScenarioC(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "mensal", 45000, 0)
	svc := newTestService(store)

	for _, exit := range []string{"2024-01-01", "2024-01-20", "2024-02-15"} {
		res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, exit, "23:00", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(45000), res.PriceCents)
		assert.Empty(t, res.Extras)
		assertSummable(t, res)
	}
}

func TestDailyWithoutWindows(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "diaria", 3000, 0)
	svc := newTestService(store)

	// 25 hours = 1500 minutes rounds up to two days.
	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-02", "09:00", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), res.PriceCents)
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, 2, res.Breakdown[0].Quantity)
	assertSummable(t, res)
}

func TestDailyWindowChargesPerDayAndOverflow(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "diaria", 3000, 0)
	hourly := addRate(store, 2, "hourly", 1000, 0)
	store.hourly["car"] = hourly
	store.windows[rate.ID] = []ratedomain.TimeWindow{
		{ID: 10, RateID: rate.ID, WindowType: "diaria", StartTime: "08:00", EndTime: "18:00", Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "19:30", nil)
	require.NoError(t, err)

	// One window day plus 90 overflow minutes: two hourly fractions.
	require.Len(t, res.Breakdown, 1)
	require.Len(t, res.Extras, 1)
	assert.Equal(t, int64(3000), res.Breakdown[0].AmountCents)
	assert.Equal(t, int64(2000), res.Extras[0].AmountCents)
	assert.Equal(t, 90, res.Extras[0].Minutes)
	assert.Equal(t, int64(5000), res.PriceCents)
	assertSummable(t, res)
}

func TestDailyWindowMultipleDaysNoDoubleCharge(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "diaria", 3000, 0)
	store.windows[rate.ID] = []ratedomain.TimeWindow{
		{ID: 10, RateID: rate.ID, WindowType: "diaria", StartTime: "08:00", EndTime: "18:00", Active: true},
		{ID: 11, RateID: rate.ID, WindowType: "diaria extra", StartTime: "09:00", EndTime: "19:00", Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-02", "12:00", nil)
	require.NoError(t, err)

	// First match wins on each of the two calendar days.
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, int64(6000), res.PriceCents)
	assert.Empty(t, res.Extras)
	assertSummable(t, res)
}

func TestDailyEntryDayOutsideWindowStillCharged(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "diaria", 3000, 0)
	store.windows[rate.ID] = []ratedomain.TimeWindow{
		{ID: 10, RateID: rate.ID, WindowType: "diaria", StartTime: "08:00", EndTime: "10:00", Active: true},
	}
	svc := newTestService(store)

	ticket := pricingdomain.Ticket{VehicleType: "car", EntryDate: "2024-01-01", EntryTime: "11:00"}
	res, err := svc.CalculateAdvancedPrice(context.Background(), ticket, rate, "2024-01-01", "12:00", nil)
	require.NoError(t, err)

	// No free first day: the default standard charge applies.
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "standard window", res.Breakdown[0].Description)
	assert.Equal(t, int64(3000), res.PriceCents)
}

func TestOvernightCrossesMidnightWithExtraRate(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "pernoite", 5000, 0)
	extra := addRate(store, 3, "hourly", 800, 0)
	extraID := extra.ID
	store.windows[rate.ID] = []ratedomain.TimeWindow{
		{ID: 10, RateID: rate.ID, WindowType: "pernoite", StartTime: "22:00", EndTime: "06:00", ExtraRateID: &extraID, Active: true},
	}
	svc := newTestService(store)

	ticket := pricingdomain.Ticket{VehicleType: "car", EntryDate: "2024-01-01", EntryTime: "22:00"}
	res, err := svc.CalculateAdvancedPrice(context.Background(), ticket, rate, "2024-01-02", "08:00", nil)
	require.NoError(t, err)

	// One overnight charge plus 120 minutes past 06:00 at the window's
	// own extra rate.
	require.Len(t, res.Breakdown, 1)
	require.Len(t, res.Extras, 1)
	assert.Equal(t, int64(5000), res.Breakdown[0].AmountCents)
	assert.Equal(t, int64(1600), res.Extras[0].AmountCents)
	assert.Equal(t, int64(6600), res.PriceCents)
	assertSummable(t, res)
}

func TestWeeklyWithinAllowance(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "semanal", 20000, 0)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-06", "08:00", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), res.PriceCents)
	assert.Empty(t, res.Extras)
	assertSummable(t, res)
}

func TestWeeklyOverflowBilledHourly(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "semanal", 20000, 0)
	hourly := addRate(store, 2, "hourly", 1000, 0)
	store.hourly["car"] = hourly
	svc := newTestService(store)

	// Exactly 180 minutes past the 7-day allowance.
	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-08", "11:00", nil)
	require.NoError(t, err)

	require.Len(t, res.Extras, 1)
	assert.Equal(t, 180, res.Extras[0].Minutes)
	assert.Equal(t, int64(3000), res.Extras[0].AmountCents)
	assert.Equal(t, int64(23000), res.PriceCents)
	assertSummable(t, res)
}

func TestBiweeklyDefaultAllowance(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "quinzenal", 35000, 0)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-14", "08:00", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(35000), res.PriceCents)
	assert.Empty(t, res.Extras)
}

func TestUnknownRateTypeBillsFlat(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "vip", 9900, 0)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-03", "08:00", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9900), res.PriceCents)
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "flat charge", res.Breakdown[0].Description)
}

func TestThresholdEmitsSuggestion(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 0)
	daily := addRate(store, 2, "diaria", 4000, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: daily.ID, ThresholdCents: 5000, Active: true},
	}
	svc := newTestService(store)

	// Six hours at 10.00 = 60.00, above the 50.00 threshold.
	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00", nil)
	require.NoError(t, err)

	require.Len(t, res.Suggestions, 1)
	sugg := res.Suggestions[0]
	assert.Equal(t, daily.ID, sugg.RateID)
	assert.Equal(t, int64(6000), sugg.CurrentPriceCents)
	assert.Equal(t, int64(4000), sugg.TargetPriceCents)
	assert.Equal(t, int64(2000), sugg.SavingsCents)
	assert.False(t, sugg.AutoApply)

	// Not flagged auto-apply: the base result stands.
	assert.Equal(t, int64(6000), res.PriceCents)
	assert.Nil(t, res.AutoApplied)
	assert.Equal(t, hourly.ID, res.AppliedRate.ID)
}

func TestThresholdBelowAmountNotEvaluated(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 0)
	daily := addRate(store, 2, "diaria", 4000, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: daily.ID, ThresholdCents: 5000, Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "10:00", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
}

func TestAutoApplyPicksLowestTargetPrice(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 0)
	daily := addRate(store, 2, "diaria", 4000, 0)
	cheaper := addRate(store, 3, "diaria", 3500, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: daily.ID, ThresholdCents: 5000, AutoApply: true, Active: true},
		{ID: 21, SourceRateID: hourly.ID, TargetRateID: cheaper.ID, ThresholdCents: 5000, AutoApply: true, Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00", nil)
	require.NoError(t, err)

	require.NotNil(t, res.AutoApplied)
	assert.Equal(t, hourly.ID, res.AutoApplied.FromRateID)
	assert.Equal(t, cheaper.ID, res.AutoApplied.ToRateID)
	assert.Equal(t, int64(3500), res.PriceCents)
	assert.Equal(t, cheaper.ID, res.AppliedRate.ID)

	// The un-adjusted base stays available for audit.
	assert.Equal(t, int64(6000), res.Base.PriceCents)
	assert.Len(t, res.Suggestions, 2)
	assertSummable(t, res)
}

func TestDisableAutoApplyKeepsSuggestions(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 0)
	daily := addRate(store, 2, "diaria", 4000, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: daily.ID, ThresholdCents: 5000, AutoApply: true, Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00",
		&pricingdomain.Options{DisableAutoApply: true})
	require.NoError(t, err)

	assert.Nil(t, res.AutoApplied)
	assert.Equal(t, int64(6000), res.PriceCents)
	require.Len(t, res.Suggestions, 1)
	assert.True(t, res.Suggestions[0].AutoApply)
}

func TestSelfReferencingThresholdIgnored(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: hourly.ID, ThresholdCents: 1000, AutoApply: true, Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
	assert.Nil(t, res.AutoApplied)
}

func TestMutualThresholdsDoNotLoop(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 0)
	daily := addRate(store, 2, "diaria", 4000, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: daily.ID, ThresholdCents: 5000, Active: true},
	}
	store.thresholds[daily.ID] = []ratedomain.RateThreshold{
		{ID: 21, SourceRateID: daily.ID, TargetRateID: hourly.ID, ThresholdCents: 1000, Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00", nil)
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, daily.ID, res.Suggestions[0].RateID)
}

func TestIdempotentCalculations(t *testing.T) {
	store := newFakeStore()
	hourly := addRate(store, 1, "hourly", 1000, 5)
	daily := addRate(store, 2, "diaria", 4000, 0)
	store.thresholds[hourly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: hourly.ID, TargetRateID: daily.ID, ThresholdCents: 5000, AutoApply: true, Active: true},
	}
	svc := newTestService(store)

	first, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00", nil)
	require.NoError(t, err)
	second, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), hourly, "2024-01-01", "14:00", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHourlyFallbackResolutionMemoized(t *testing.T) {
	store := newFakeStore()
	weekly := addRate(store, 1, "semanal", 20000, 0)
	daily := addRate(store, 2, "diaria", 4000, 0)
	hourly := addRate(store, 3, "hourly", 1000, 0)
	store.hourly["car"] = hourly
	store.thresholds[weekly.ID] = []ratedomain.RateThreshold{
		{ID: 20, SourceRateID: weekly.ID, TargetRateID: daily.ID, ThresholdCents: 10000, Active: true},
	}
	svc := newTestService(store)

	_, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), weekly, "2024-01-08", "11:00", nil)
	require.NoError(t, err)

	// Two contexts were built (weekly + daily target) but the hourly
	// fallback lookup ran once.
	assert.Equal(t, 2, store.windowCalls)
	assert.Equal(t, 1, store.findRateCalls)
}

func TestPricingRulesFetchedButNotConsumed(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 0)
	store.rules[rate.ID] = []ratedomain.PricingRule{
		{ID: 30, RateID: rate.ID, Name: "holiday", ValueAdjustmentCents: 999, Active: true},
	}
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "09:00", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.PriceCents)
}

func TestInvalidTemporalRange(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 0)
	svc := newTestService(store)

	_, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "08:00", nil)
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidTemporalRange)

	_, err = svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2023-12-31", "10:00", nil)
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidTemporalRange)
}

func TestUnparseableDateTime(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 0)
	svc := newTestService(store)

	_, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-13-01", "10:00", nil)
	assert.ErrorIs(t, err, pricingdomain.ErrUnparseableDateTime)
}

func TestMissingRate(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), nil, "2024-01-01", "10:00", nil)
	assert.ErrorIs(t, err, pricingdomain.ErrMissingRate)
}

func TestStoreFailureIsTerminal(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 0)
	store.windowsErr = errors.New("connection refused")
	svc := newTestService(store)

	_, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "10:00", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pricingdomain.ErrDataAccess)
}

func TestMalformedConfigDegradesToDefaults(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 0)
	rate.Config = []byte(`{"courtesyMinutes": "broken`)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "10:05", nil)
	require.NoError(t, err)
	// Courtesy falls back to zero: remainder 5 bills the third fraction.
	assert.Equal(t, int64(3000), res.PriceCents)
}

func TestConfigCourtesyUsedWhenRateColumnUnset(t *testing.T) {
	store := newFakeStore()
	rate := addRate(store, 1, "hourly", 1000, 0)
	rate.Config = []byte(`{"courtesyMinutes": 10}`)
	svc := newTestService(store)

	res, err := svc.CalculateAdvancedPrice(context.Background(), carTicket(), rate, "2024-01-01", "10:05", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.PriceCents)
}
