package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vagaparlabs/vagapark/internal/clock"
	"github.com/vagaparlabs/vagapark/internal/observability"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"github.com/vagaparlabs/vagapark/internal/ticket/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// plateLockTTL bounds how long an entry lock can outlive a crashed gate
// transaction before the plate can enter again.
const plateLockTTL = 30 * time.Second

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    ticketdomain.Repository
	rates   ratedomain.Repository
	pricing pricingdomain.Service
	redis   *redis.Client
	metrics *observability.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Rates   ratedomain.Repository
	Pricing pricingdomain.Service
	Redis   *redis.Client          `optional:"true"`
	Metrics *observability.Metrics `optional:"true"`
}

func NewService(p ServiceParam) ticketdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("ticket.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    repository.NewRepository(p.DB),
		rates:   p.Rates,
		pricing: p.Pricing,
		redis:   p.Redis,
		metrics: p.Metrics,
	}
}

func (s *Service) Open(ctx context.Context, req ticketdomain.OpenRequest) (*ticketdomain.Ticket, error) {
	plate := strings.ToUpper(strings.TrimSpace(req.Plate))
	if plate == "" {
		return nil, ticketdomain.ErrPlateRequired
	}

	rate, err := s.rates.GetRate(ctx, req.RateID)
	if err != nil {
		return nil, fmt.Errorf("load rate: %w", err)
	}
	if rate == nil {
		return nil, ratedomain.ErrRateNotFound
	}

	if err := s.acquirePlateLock(ctx, plate); err != nil {
		return nil, err
	}
	defer s.releasePlateLock(ctx, plate)

	open, err := s.repo.FindOpenByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ticketdomain.ErrPlateAlreadyParked
	}

	now := s.clock.Now(ctx)
	ticket := &ticketdomain.Ticket{
		ID:          s.genID.Generate(),
		Barcode:     uuid.NewString(),
		Plate:       plate,
		VehicleType: strings.TrimSpace(req.VehicleType),
		RateID:      rate.ID,
		Status:      ticketdomain.TicketStatusOpen,
		EntryAt:     now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, ticket); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TicketsOpened.Inc()
	}
	s.log.Info("ticket opened",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("plate", plate),
		zap.String("rate_id", rate.ID.String()),
	)
	return ticket, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*ticketdomain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ticketdomain.ErrTicketNotFound
	}
	return ticket, nil
}

func (s *Service) List(ctx context.Context, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Preview(ctx context.Context, id snowflake.ID, req ticketdomain.CheckoutRequest) (*pricingdomain.PriceResult, error) {
	ticket, rate, exitDate, exitTime, err := s.resolveCheckout(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return s.pricing.CalculateAdvancedPrice(ctx, pricingTicket(ticket), rate, exitDate, exitTime, req.Options)
}

func (s *Service) Checkout(ctx context.Context, id snowflake.ID, req ticketdomain.CheckoutRequest) (*ticketdomain.CheckoutResponse, error) {
	ticket, rate, exitDate, exitTime, err := s.resolveCheckout(ctx, id, req)
	if err != nil {
		return nil, err
	}

	price, err := s.pricing.CalculateAdvancedPrice(ctx, pricingTicket(ticket), rate, exitDate, exitTime, req.Options)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(price)
	if err != nil {
		return nil, fmt.Errorf("marshal price snapshot: %w", err)
	}

	exitAt, err := time.ParseInLocation("2006-01-02 15:04:05", exitDate+" "+exitTime, time.UTC)
	if err != nil {
		return nil, pricingdomain.ErrUnparseableDateTime
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := repository.NewRepository(tx)

		current, err := repoTx.FindByID(ctx, ticket.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return ticketdomain.ErrTicketNotFound
		}
		if current.Status != ticketdomain.TicketStatusOpen {
			return ticketdomain.ErrTicketClosed
		}

		current.Status = ticketdomain.TicketStatusClosed
		current.ExitAt = &exitAt
		current.AmountCents = price.PriceCents
		appliedID := price.AppliedRate.ID
		current.AppliedRateID = &appliedID
		current.PriceSnapshot = snapshot
		current.UpdatedAt = s.clock.Now(ctx)

		if err := repoTx.Update(ctx, current); err != nil {
			return err
		}
		*ticket = *current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TicketsClosed.Inc()
	}
	s.log.Info("ticket checked out",
		zap.String("ticket_id", ticket.ID.String()),
		zap.Int64("amount_cents", price.PriceCents),
		zap.Bool("auto_applied", price.AutoApplied != nil),
	)
	return &ticketdomain.CheckoutResponse{Ticket: ticket, Price: price}, nil
}

func (s *Service) resolveCheckout(ctx context.Context, id snowflake.ID, req ticketdomain.CheckoutRequest) (*ticketdomain.Ticket, *ratedomain.Rate, string, string, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, "", "", err
	}
	if ticket.Status != ticketdomain.TicketStatusOpen {
		return nil, nil, "", "", ticketdomain.ErrTicketClosed
	}

	rate, err := s.rates.GetRate(ctx, ticket.RateID)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("load rate: %w", err)
	}
	if rate == nil {
		return nil, nil, "", "", ratedomain.ErrRateNotFound
	}

	exitDate := strings.TrimSpace(req.ExitDate)
	exitTime := strings.TrimSpace(req.ExitTime)
	if exitDate == "" {
		now := s.clock.Now(ctx)
		exitDate = now.Format("2006-01-02")
		exitTime = now.Format("15:04:05")
	} else if exitTime == "" {
		exitTime = "00:00:00"
	} else if len(exitTime) == 5 {
		exitTime += ":00"
	}

	return ticket, rate, exitDate, exitTime, nil
}

func pricingTicket(t *ticketdomain.Ticket) pricingdomain.Ticket {
	return pricingdomain.Ticket{
		VehicleType: t.VehicleType,
		EntryDate:   t.EntryAt.Format("2006-01-02"),
		EntryTime:   t.EntryAt.Format("15:04:05"),
	}
}

func (s *Service) acquirePlateLock(ctx context.Context, plate string) error {
	if s.redis == nil {
		return nil
	}
	ok, err := s.redis.SetNX(ctx, plateLockKey(plate), "1", plateLockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire plate lock: %w", err)
	}
	if !ok {
		return ticketdomain.ErrPlateAlreadyParked
	}
	return nil
}

func (s *Service) releasePlateLock(ctx context.Context, plate string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, plateLockKey(plate)).Err(); err != nil {
		s.log.Warn("release plate lock", zap.String("plate", plate), zap.Error(err))
	}
}

func plateLockKey(plate string) string {
	return "vagapark:entry:" + plate
}
