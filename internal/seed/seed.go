package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type rateSeed struct {
	Name            string
	VehicleType     string
	RateType        string
	ValueCents      int64
	CourtesyMinutes int
	Config          string
}

type windowSeed struct {
	RateCode      string
	WindowType    string
	StartTime     string
	EndTime       string
	ExtraRateCode string
}

type thresholdSeed struct {
	SourceRateCode string
	TargetRateCode string
	ThresholdCents int64
	AutoApply      bool
}

var defaultRates = []rateSeed{
	{Name: "Hora Carro", VehicleType: "car", RateType: "hora", ValueCents: 1000, CourtesyMinutes: 10},
	{Name: "Hora Moto", VehicleType: "moto", RateType: "hora", ValueCents: 500, CourtesyMinutes: 10},
	{Name: "Diaria Carro", VehicleType: "car", RateType: "diaria", ValueCents: 5000},
	{Name: "Pernoite Carro", VehicleType: "car", RateType: "pernoite", ValueCents: 4000},
	{Name: "Semanal Carro", VehicleType: "car", RateType: "semanal", ValueCents: 25000, Config: `{"period_days":7}`},
	{Name: "Quinzenal Carro", VehicleType: "car", RateType: "quinzenal", ValueCents: 42000, Config: `{"period_days":14}`},
	{Name: "Mensal Carro", VehicleType: "car", RateType: "mensal", ValueCents: 45000, Config: `{"period_days":30}`},
}

var defaultWindows = []windowSeed{
	{RateCode: "diaria-carro", WindowType: "daytime", StartTime: "08:00", EndTime: "20:00", ExtraRateCode: "hora-carro"},
	{RateCode: "pernoite-carro", WindowType: "overnight", StartTime: "22:00", EndTime: "06:00", ExtraRateCode: "hora-carro"},
}

var defaultThresholds = []thresholdSeed{
	{SourceRateCode: "hora-carro", TargetRateCode: "diaria-carro", ThresholdCents: 4000, AutoApply: true},
	{SourceRateCode: "diaria-carro", TargetRateCode: "semanal-carro", ThresholdCents: 20000, AutoApply: false},
}

// EnsureDefaultRates seeds a workable rate table for a fresh installation.
// It is idempotent, existing codes are left untouched.
func EnsureDefaultRates(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byCode, err := ensureRatesTx(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureWindowsTx(ctx, tx, node, byCode); err != nil {
			return err
		}
		return ensureThresholdsTx(ctx, tx, node, byCode)
	})
}

func ensureRatesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (map[string]*ratedomain.Rate, error) {
	byCode := make(map[string]*ratedomain.Rate, len(defaultRates))
	now := time.Now().UTC()

	for _, s := range defaultRates {
		code := slug.Make(s.Name)

		var existing ratedomain.Rate
		err := tx.WithContext(ctx).Where("code = ?", code).First(&existing).Error
		if err == nil {
			rate := existing
			byCode[code] = &rate
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		rate := &ratedomain.Rate{
			ID:              node.Generate(),
			Code:            code,
			Name:            s.Name,
			VehicleType:     s.VehicleType,
			RateType:        s.RateType,
			ValueCents:      s.ValueCents,
			CourtesyMinutes: s.CourtesyMinutes,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if s.Config != "" {
			rate.Config = datatypes.JSON(s.Config)
		}
		if err := tx.WithContext(ctx).Create(rate).Error; err != nil {
			return nil, err
		}
		byCode[code] = rate
	}

	return byCode, nil
}

func ensureWindowsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, byCode map[string]*ratedomain.Rate) error {
	now := time.Now().UTC()

	for _, s := range defaultWindows {
		rate, ok := byCode[s.RateCode]
		if !ok {
			continue
		}

		var count int64
		err := tx.WithContext(ctx).
			Model(&ratedomain.TimeWindow{}).
			Where("rate_id = ? AND window_type = ?", rate.ID, s.WindowType).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		window := &ratedomain.TimeWindow{
			ID:         node.Generate(),
			RateID:     rate.ID,
			WindowType: s.WindowType,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if extra, ok := byCode[s.ExtraRateCode]; ok {
			id := extra.ID
			window.ExtraRateID = &id
		}
		if err := tx.WithContext(ctx).Create(window).Error; err != nil {
			return err
		}
	}

	return nil
}

func ensureThresholdsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, byCode map[string]*ratedomain.Rate) error {
	now := time.Now().UTC()

	for _, s := range defaultThresholds {
		source, ok := byCode[s.SourceRateCode]
		if !ok {
			continue
		}
		target, ok := byCode[s.TargetRateCode]
		if !ok {
			continue
		}

		var count int64
		err := tx.WithContext(ctx).
			Model(&ratedomain.RateThreshold{}).
			Where("source_rate_id = ? AND target_rate_id = ?", source.ID, target.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		threshold := &ratedomain.RateThreshold{
			ID:             node.Generate(),
			SourceRateID:   source.ID,
			TargetRateID:   target.ID,
			ThresholdCents: s.ThresholdCents,
			AutoApply:      s.AutoApply,
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.WithContext(ctx).Create(threshold).Error; err != nil {
			return err
		}
	}

	return nil
}
