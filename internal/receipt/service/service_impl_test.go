package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vagaparlabs/vagapark/internal/config"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"go.uber.org/zap"
)

func TestRenderProducesPDF(t *testing.T) {
	svc := &Service{
		log: zap.NewNop(),
		facility: config.FacilityConfig{
			Name:    "Estacionamento Central",
			Address: "Rua das Flores 100",
			TaxID:   "12.345.678/0001-00",
		},
	}

	exit := time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)
	ticket := &ticketdomain.Ticket{
		Plate:   "ABC1234",
		Barcode: "b7c2",
		Status:  ticketdomain.TicketStatusClosed,
		EntryAt: time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
		ExitAt:  &exit,
	}
	price := &pricingdomain.PriceResult{
		PriceCents: 5000,
		Duration:   pricingdomain.Duration{Hours: 4, Minutes: 30, TotalMinutes: 270},
		Breakdown: []pricingdomain.LineItem{
			{Description: "daily charge", Quantity: 1, UnitCents: 5000, AmountCents: 5000},
		},
	}

	pdf, err := svc.render(ticket, price)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "R$ 12,34", formatCents(1234))
	assert.Equal(t, "R$ 0,05", formatCents(5))
	assert.Equal(t, "-R$ 1,00", formatCents(-100))
}
