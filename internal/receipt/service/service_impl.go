package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/vagaparlabs/vagapark/internal/config"
	"github.com/vagaparlabs/vagapark/internal/observability"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	"github.com/vagaparlabs/vagapark/internal/receipt/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log      *zap.Logger
	tickets  ticketdomain.Service
	facility config.FacilityConfig
	metrics  *observability.Metrics
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Tickets ticketdomain.Service
	Config  config.Config
	Metrics *observability.Metrics `optional:"true"`
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:      p.Log.Named("receipt.service"),
		tickets:  p.Tickets,
		facility: p.Config.Facility,
		metrics:  p.Metrics,
	}
}

func (s *Service) Issue(ctx context.Context, ticketID snowflake.ID) (*domain.Receipt, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != ticketdomain.TicketStatusClosed {
		return nil, domain.ErrTicketStillOpen
	}

	var price pricingdomain.PriceResult
	if err := json.Unmarshal(ticket.PriceSnapshot, &price); err != nil {
		return nil, fmt.Errorf("decode price snapshot: %w", err)
	}

	pdf, err := s.render(ticket, &price)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ReceiptsIssued.Inc()
	}
	s.log.Info("receipt issued",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("barcode", ticket.Barcode),
	)

	return &domain.Receipt{
		TicketID: ticket.ID,
		Barcode:  ticket.Barcode,
		Filename: fmt.Sprintf("receipt-%s.pdf", ticket.Barcode),
		PDF:      pdf,
	}, nil
}

func (s *Service) render(ticket *ticketdomain.Ticket, price *pricingdomain.PriceResult) ([]byte, error) {
	cfg := marotoconfig.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(10).
		WithRightMargin(10).
		WithTopMargin(10).
		Build()

	m := maroto.New(cfg)

	m.AddRow(8, text.NewCol(12, s.facility.Name, props.Text{
		Style: fontstyle.Bold,
		Size:  12,
		Align: align.Center,
	}))
	if s.facility.Address != "" {
		m.AddRow(5, text.NewCol(12, s.facility.Address, props.Text{Size: 8, Align: align.Center}))
	}
	if s.facility.TaxID != "" {
		m.AddRow(5, text.NewCol(12, "CNPJ "+s.facility.TaxID, props.Text{Size: 8, Align: align.Center}))
	}
	m.AddRow(4, line.NewCol(12))

	m.AddRow(5, keyValueCols("Plate", ticket.Plate)...)
	m.AddRow(5, keyValueCols("Ticket", ticket.Barcode)...)
	m.AddRow(5, keyValueCols("Entry", ticket.EntryAt.Format("2006-01-02 15:04"))...)
	if ticket.ExitAt != nil {
		m.AddRow(5, keyValueCols("Exit", ticket.ExitAt.Format("2006-01-02 15:04"))...)
	}
	m.AddRow(5, keyValueCols("Duration", fmt.Sprintf("%dh%02d", price.Duration.Hours, price.Duration.Minutes))...)
	m.AddRow(4, line.NewCol(12))

	for _, item := range price.Breakdown {
		m.AddRow(5, keyValueCols(
			fmt.Sprintf("%s x%d", item.Description, item.Quantity),
			formatCents(item.AmountCents),
		)...)
	}
	for _, item := range price.Extras {
		m.AddRow(5, keyValueCols(
			fmt.Sprintf("%s x%d", item.Description, item.Quantity),
			formatCents(item.AmountCents),
		)...)
	}

	m.AddRow(4, line.NewCol(12))
	m.AddRow(7,
		text.NewCol(6, "TOTAL", props.Text{Style: fontstyle.Bold, Size: 11}),
		text.NewCol(6, formatCents(price.PriceCents), props.Text{
			Style: fontstyle.Bold,
			Size:  11,
			Align: align.Right,
		}),
	)

	if price.AutoApplied != nil {
		m.AddRow(5, text.NewCol(12, "Promotional rate applied automatically", props.Text{
			Size:  7,
			Align: align.Center,
		}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func keyValueCols(key, value string) []core.Col {
	return []core.Col{
		text.NewCol(6, key, props.Text{Size: 9}),
		text.NewCol(6, value, props.Text{Size: 9, Align: align.Right}),
	}
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}
