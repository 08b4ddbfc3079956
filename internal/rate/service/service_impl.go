package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"github.com/vagaparlabs/vagapark/internal/rate/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	repo  ratedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p ServiceParam) ratedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rate.service"),

		genID: p.GenID,
		repo:  repository.NewRepository(p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req ratedomain.CreateRateRequest) (*ratedomain.Rate, error) {
	if req.ValueCents <= 0 {
		return nil, ratedomain.ErrInvalidValue
	}
	if pricingdomain.ParseRateType(req.RateType) == pricingdomain.RateTypeUnknown {
		return nil, ratedomain.ErrInvalidRateType
	}

	now := time.Now().UTC()
	rate := &ratedomain.Rate{
		ID:              s.genID.Generate(),
		Code:            buildRateCode(req.VehicleType, req.RateType, req.Name),
		Name:            strings.TrimSpace(req.Name),
		VehicleType:     strings.TrimSpace(req.VehicleType),
		RateType:        strings.TrimSpace(req.RateType),
		ValueCents:      req.ValueCents,
		CourtesyMinutes: req.CourtesyMinutes,
		Config:          req.Config,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.InsertRate(ctx, rate); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ratedomain.ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert rate: %w", err)
	}

	s.log.Info("rate created",
		zap.String("rate_id", rate.ID.String()),
		zap.String("rate_type", rate.RateType),
		zap.String("vehicle_type", rate.VehicleType),
	)
	return rate, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req ratedomain.UpdateRateRequest) (*ratedomain.Rate, error) {
	rate, err := s.repo.GetRate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, ratedomain.ErrRateNotFound
	}

	if req.Name != nil {
		rate.Name = strings.TrimSpace(*req.Name)
	}
	if req.ValueCents != nil {
		if *req.ValueCents <= 0 {
			return nil, ratedomain.ErrInvalidValue
		}
		rate.ValueCents = *req.ValueCents
	}
	if req.CourtesyMinutes != nil {
		rate.CourtesyMinutes = *req.CourtesyMinutes
	}
	if req.Active != nil {
		rate.Active = *req.Active
	}
	rate.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("update rate: %w", err)
	}
	return rate, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*ratedomain.Rate, error) {
	rate, err := s.repo.GetRate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, ratedomain.ErrRateNotFound
	}
	return rate, nil
}

func (s *Service) List(ctx context.Context, filter ratedomain.ListRatesFilter) ([]ratedomain.Rate, error) {
	return s.repo.ListRates(ctx, filter)
}

func (s *Service) AddTimeWindow(ctx context.Context, rateID snowflake.ID, req ratedomain.CreateTimeWindowRequest) (*ratedomain.TimeWindow, error) {
	rate, err := s.repo.GetRate(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, ratedomain.ErrRateNotFound
	}

	now := time.Now().UTC()
	window := &ratedomain.TimeWindow{
		ID:                   s.genID.Generate(),
		RateID:               rateID,
		WindowType:           strings.TrimSpace(req.WindowType),
		StartTime:            strings.TrimSpace(req.StartTime),
		EndTime:              strings.TrimSpace(req.EndTime),
		DurationLimitMinutes: req.DurationLimitMinutes,
		ExtraRateID:          req.ExtraRateID,
		StartDay:             req.StartDay,
		EndDay:               req.EndDay,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.InsertTimeWindow(ctx, window); err != nil {
		return nil, fmt.Errorf("insert time window: %w", err)
	}
	return window, nil
}

func (s *Service) ListTimeWindows(ctx context.Context, rateID snowflake.ID) ([]ratedomain.TimeWindow, error) {
	return s.repo.ListTimeWindows(ctx, rateID)
}

func (s *Service) AddThreshold(ctx context.Context, sourceRateID snowflake.ID, req ratedomain.CreateThresholdRequest) (*ratedomain.RateThreshold, error) {
	rate, err := s.repo.GetRate(ctx, sourceRateID)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, ratedomain.ErrRateNotFound
	}
	target, err := s.repo.GetRate(ctx, req.TargetRateID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ratedomain.ErrRateNotFound
	}

	now := time.Now().UTC()
	threshold := &ratedomain.RateThreshold{
		ID:             s.genID.Generate(),
		SourceRateID:   sourceRateID,
		TargetRateID:   req.TargetRateID,
		ThresholdCents: req.ThresholdCents,
		AutoApply:      req.AutoApply,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.InsertThreshold(ctx, threshold); err != nil {
		return nil, fmt.Errorf("insert threshold: %w", err)
	}
	return threshold, nil
}

func (s *Service) ListThresholds(ctx context.Context, sourceRateID snowflake.ID) ([]ratedomain.RateThreshold, error) {
	return s.repo.ListThresholds(ctx, sourceRateID)
}

func buildRateCode(vehicleType, rateType, name string) string {
	return slug.Make(strings.Join([]string{vehicleType, rateType, name}, "-"))
}
