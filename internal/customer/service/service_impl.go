package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vagaparlabs/vagapark/internal/customer/domain"
	"github.com/vagaparlabs/vagapark/internal/customer/repository"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPeriodDays = 30

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	rates   ratedomain.Repository
	pricing pricingdomain.Service
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Rates   ratedomain.Repository
	Pricing pricingdomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("customer.service"),
		genID:   p.GenID,
		repo:    repository.NewRepository(p.DB),
		rates:   p.Rates,
		pricing: p.Pricing,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Customer, error) {
	plate := strings.ToUpper(strings.TrimSpace(req.Plate))

	if err := s.checkMonthlyRate(ctx, req.RateID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByPlate(ctx, plate)
	if err != nil {
		return nil, fmt.Errorf("find customer by plate: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrPlateTaken
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:          s.genID.Generate(),
		Name:        req.Name,
		Document:    req.Document,
		Email:       req.Email,
		Plate:       plate,
		VehicleType: req.VehicleType,
		RateID:      req.RateID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, customer); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}

	s.log.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("plate", customer.Plate),
	)
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Customer, error) {
	filter.Plate = strings.ToUpper(strings.TrimSpace(filter.Plate))
	return s.repo.List(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RateID != nil {
		if err := s.checkMonthlyRate(ctx, *req.RateID); err != nil {
			return nil, err
		}
		customer.RateID = *req.RateID
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Active != nil {
		customer.Active = *req.Active
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

func (s *Service) PreviewCharge(ctx context.Context, id snowflake.ID, periodStart string) (*domain.ChargePreview, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, domain.ErrCustomerInactive
	}

	rate, err := s.rates.GetRate(ctx, customer.RateID)
	if err != nil {
		return nil, fmt.Errorf("load rate: %w", err)
	}
	if rate == nil {
		return nil, ratedomain.ErrRateNotFound
	}

	start, err := time.ParseInLocation("2006-01-02", periodStart, time.UTC)
	if err != nil {
		return nil, pricingdomain.ErrUnparseableDateTime
	}

	periodDays := defaultPeriodDays
	if config := pricingdomain.ParseRateConfig(rate.Config); config.PeriodDays > 0 {
		periodDays = config.PeriodDays
	}
	end := start.AddDate(0, 0, periodDays)

	price, err := s.pricing.CalculateAdvancedPrice(ctx, pricingdomain.Ticket{
		VehicleType: customer.VehicleType,
		EntryDate:   start.Format("2006-01-02"),
		EntryTime:   "00:00",
	}, rate, end.Format("2006-01-02"), "00:00", nil)
	if err != nil {
		return nil, err
	}

	return &domain.ChargePreview{Customer: customer, Price: price}, nil
}

func (s *Service) checkMonthlyRate(ctx context.Context, rateID snowflake.ID) error {
	rate, err := s.rates.GetRate(ctx, rateID)
	if err != nil {
		return fmt.Errorf("load rate: %w", err)
	}
	if rate == nil {
		return ratedomain.ErrRateNotFound
	}
	if pricingdomain.ParseRateType(rate.RateType) != pricingdomain.RateTypeMonthly {
		return domain.ErrMonthlyRateNeeded
	}
	return nil
}
