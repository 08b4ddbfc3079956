package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ratedomain.Repository {
	return &repository{db: db}
}

func (r *repository) GetRate(ctx context.Context, id snowflake.ID) (*ratedomain.Rate, error) {
	var rate ratedomain.Rate
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// FindRate matches rate types through their normalized form, so a row
// stored as "hora" satisfies a lookup for "hourly".
func (r *repository) FindRate(ctx context.Context, filter ratedomain.FindRateFilter) (*ratedomain.Rate, error) {
	query := r.db.WithContext(ctx).
		Model(&ratedomain.Rate{}).
		Where("active = ?", true)
	if filter.VehicleType != "" {
		query = query.Where("LOWER(vehicle_type) = LOWER(?)", filter.VehicleType)
	}

	var rates []ratedomain.Rate
	if err := query.Order("created_at ASC").Find(&rates).Error; err != nil {
		return nil, err
	}

	wanted := pricingdomain.ParseRateType(filter.RateType)
	for i := range rates {
		if filter.RateType == "" || pricingdomain.ParseRateType(rates[i].RateType) == wanted {
			return &rates[i], nil
		}
	}
	return nil, nil
}

func (r *repository) GetRatesByIDs(ctx context.Context, ids []snowflake.ID) ([]ratedomain.Rate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rates []ratedomain.Rate
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rates).Error
	return rates, err
}

func (r *repository) GetActiveTimeWindows(ctx context.Context, rateID snowflake.ID) ([]ratedomain.TimeWindow, error) {
	var windows []ratedomain.TimeWindow
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM rate_time_windows
		 WHERE rate_id = ? AND active = ?
		 ORDER BY start_time ASC, id ASC`,
		rateID, true,
	).Scan(&windows).Error
	return windows, err
}

func (r *repository) GetThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]ratedomain.RateThreshold, error) {
	var thresholds []ratedomain.RateThreshold
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM rate_thresholds
		 WHERE source_rate_id = ? AND active = ?
		 ORDER BY threshold_cents ASC, id ASC`,
		sourceRateID, true,
	).Scan(&thresholds).Error
	return thresholds, err
}

func (r *repository) GetActivePricingRules(ctx context.Context, rateID snowflake.ID) ([]ratedomain.PricingRule, error) {
	var rules []ratedomain.PricingRule
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM pricing_rules
		 WHERE rate_id = ? AND active = ?
		 ORDER BY id ASC`,
		rateID, true,
	).Scan(&rules).Error
	return rules, err
}

func (r *repository) InsertRate(ctx context.Context, rate *ratedomain.Rate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repository) UpdateRate(ctx context.Context, rate *ratedomain.Rate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *repository) ListRates(ctx context.Context, filter ratedomain.ListRatesFilter) ([]ratedomain.Rate, error) {
	query := r.db.WithContext(ctx).Model(&ratedomain.Rate{})
	if filter.VehicleType != "" {
		query = query.Where("LOWER(vehicle_type) = LOWER(?)", filter.VehicleType)
	}
	if filter.RateType != "" {
		query = query.Where("LOWER(rate_type) = LOWER(?)", filter.RateType)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rates []ratedomain.Rate
	err := query.Order("created_at ASC").Find(&rates).Error
	return rates, err
}

func (r *repository) InsertTimeWindow(ctx context.Context, window *ratedomain.TimeWindow) error {
	return r.db.WithContext(ctx).Create(window).Error
}

func (r *repository) ListTimeWindows(ctx context.Context, rateID snowflake.ID) ([]ratedomain.TimeWindow, error) {
	var windows []ratedomain.TimeWindow
	err := r.db.WithContext(ctx).
		Where("rate_id = ?", rateID).
		Order("start_time ASC").
		Find(&windows).Error
	return windows, err
}

func (r *repository) InsertThreshold(ctx context.Context, threshold *ratedomain.RateThreshold) error {
	return r.db.WithContext(ctx).Create(threshold).Error
}

func (r *repository) ListThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]ratedomain.RateThreshold, error) {
	var thresholds []ratedomain.RateThreshold
	err := r.db.WithContext(ctx).
		Where("source_rate_id = ?", sourceRateID).
		Order("threshold_cents ASC").
		Find(&thresholds).Error
	return thresholds, err
}
