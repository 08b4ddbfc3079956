package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
)

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketClosed       = errors.New("ticket already closed")
	ErrPlateAlreadyParked = errors.New("plate already has an open ticket")
	ErrPlateRequired      = errors.New("plate is required")
)

type OpenRequest struct {
	Plate       string       `json:"plate" binding:"required"`
	VehicleType string       `json:"vehicle_type" binding:"required"`
	RateID      snowflake.ID `json:"rate_id" binding:"required"`
}

type CheckoutRequest struct {
	// ExitDate/ExitTime override the clock for kiosks replaying a gate
	// event; both empty means "now".
	ExitDate string                 `json:"exit_date,omitempty"`
	ExitTime string                 `json:"exit_time,omitempty"`
	Options  *pricingdomain.Options `json:"options,omitempty"`
}

type CheckoutResponse struct {
	Ticket *Ticket                    `json:"ticket"`
	Price  *pricingdomain.PriceResult `json:"price"`
}

type ListFilter struct {
	Plate  string `form:"plate"`
	Status string `form:"status"`
}

type Repository interface {
	Insert(ctx context.Context, ticket *Ticket) error
	FindByID(ctx context.Context, id snowflake.ID) (*Ticket, error)
	FindOpenByPlate(ctx context.Context, plate string) (*Ticket, error)
	Update(ctx context.Context, ticket *Ticket) error
	List(ctx context.Context, filter ListFilter) ([]Ticket, error)
}

type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Ticket, error)
	Get(ctx context.Context, id snowflake.ID) (*Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]Ticket, error)
	// Preview prices an open ticket without closing it.
	Preview(ctx context.Context, id snowflake.ID, req CheckoutRequest) (*pricingdomain.PriceResult, error)
	Checkout(ctx context.Context, id snowflake.ID, req CheckoutRequest) (*CheckoutResponse, error)
}
