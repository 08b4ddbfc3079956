package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vagaparlabs/vagapark/internal/clock"
	"github.com/vagaparlabs/vagapark/internal/config"
	pricingservice "github.com/vagaparlabs/vagapark/internal/pricing/service"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	raterepository "github.com/vagaparlabs/vagapark/internal/rate/repository"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	svc   ticketdomain.Service
	db    *gorm.DB
	clock *clock.Manual
	rates ratedomain.Repository
	node  *snowflake.Node
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ratedomain.Rate{},
		&ratedomain.TimeWindow{},
		&ratedomain.RateThreshold{},
		&ratedomain.PricingRule{},
		&ticketdomain.Ticket{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rates := raterepository.NewRepository(db)
	pricing := pricingservice.NewService(pricingservice.ServiceParam{
		Log:    zap.NewNop(),
		Store:  rates,
		Config: config.Config{Pricing: config.PricingConfig{AutoApplyEnabled: true}},
	})

	clk := clock.NewManual(time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Rates:   rates,
		Pricing: pricing,
		Redis:   client,
	})

	return &testEnv{svc: svc, db: db, clock: clk, rates: rates, node: node}
}

func (e *testEnv) seedHourlyRate(t *testing.T) *ratedomain.Rate {
	t.Helper()
	now := time.Now().UTC()
	rate := &ratedomain.Rate{
		ID:          e.node.Generate(),
		Code:        "car-hourly",
		Name:        "Hourly",
		VehicleType: "car",
		RateType:    "hourly",
		ValueCents:  1000,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, e.rates.InsertRate(context.Background(), rate))
	return rate
}

func TestOpenAndCheckout(t *testing.T) {
	env := setupEnv(t)
	rate := env.seedHourlyRate(t)

	ticket, err := env.svc.Open(context.Background(), ticketdomain.OpenRequest{
		Plate:       "abc1234",
		VehicleType: "car",
		RateID:      rate.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, ticketdomain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "ABC1234", ticket.Plate)
	assert.NotEmpty(t, ticket.Barcode)

	resp, err := env.svc.Checkout(context.Background(), ticket.ID, ticketdomain.CheckoutRequest{
		ExitDate: "2024-01-01",
		ExitTime: "10:05",
	})
	require.NoError(t, err)

	// 125 minutes, no courtesy: three hourly fractions.
	assert.Equal(t, int64(3000), resp.Price.PriceCents)
	assert.Equal(t, ticketdomain.TicketStatusClosed, resp.Ticket.Status)
	assert.Equal(t, int64(3000), resp.Ticket.AmountCents)
	assert.NotEmpty(t, resp.Ticket.PriceSnapshot)
	require.NotNil(t, resp.Ticket.ExitAt)
}

func TestOpenRejectsDuplicatePlate(t *testing.T) {
	env := setupEnv(t)
	rate := env.seedHourlyRate(t)

	_, err := env.svc.Open(context.Background(), ticketdomain.OpenRequest{
		Plate:       "DUP0001",
		VehicleType: "car",
		RateID:      rate.ID,
	})
	require.NoError(t, err)

	_, err = env.svc.Open(context.Background(), ticketdomain.OpenRequest{
		Plate:       "dup0001",
		VehicleType: "car",
		RateID:      rate.ID,
	})
	assert.ErrorIs(t, err, ticketdomain.ErrPlateAlreadyParked)
}

func TestCheckoutTwiceFails(t *testing.T) {
	env := setupEnv(t)
	rate := env.seedHourlyRate(t)

	ticket, err := env.svc.Open(context.Background(), ticketdomain.OpenRequest{
		Plate:       "XYZ9876",
		VehicleType: "car",
		RateID:      rate.ID,
	})
	require.NoError(t, err)

	req := ticketdomain.CheckoutRequest{ExitDate: "2024-01-01", ExitTime: "09:00"}
	_, err = env.svc.Checkout(context.Background(), ticket.ID, req)
	require.NoError(t, err)

	_, err = env.svc.Checkout(context.Background(), ticket.ID, req)
	assert.ErrorIs(t, err, ticketdomain.ErrTicketClosed)
}

func TestPreviewLeavesTicketOpen(t *testing.T) {
	env := setupEnv(t)
	rate := env.seedHourlyRate(t)

	ticket, err := env.svc.Open(context.Background(), ticketdomain.OpenRequest{
		Plate:       "PRV0001",
		VehicleType: "car",
		RateID:      rate.ID,
	})
	require.NoError(t, err)

	price, err := env.svc.Preview(context.Background(), ticket.ID, ticketdomain.CheckoutRequest{
		ExitDate: "2024-01-01",
		ExitTime: "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), price.PriceCents)

	reloaded, err := env.svc.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticketdomain.TicketStatusOpen, reloaded.Status)
	assert.Zero(t, reloaded.AmountCents)
}

func TestCheckoutUsesClockWhenNoExitGiven(t *testing.T) {
	env := setupEnv(t)
	rate := env.seedHourlyRate(t)

	ticket, err := env.svc.Open(context.Background(), ticketdomain.OpenRequest{
		Plate:       "CLK0001",
		VehicleType: "car",
		RateID:      rate.ID,
	})
	require.NoError(t, err)

	env.clock.Advance(45 * time.Minute)
	resp, err := env.svc.Checkout(context.Background(), ticket.ID, ticketdomain.CheckoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resp.Price.PriceCents)
	assert.Equal(t, 45, resp.Price.Duration.TotalMinutes)
}
