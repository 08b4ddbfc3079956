package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrPlateTaken        = errors.New("plate already registered to a customer")
	ErrCustomerInactive  = errors.New("customer is inactive")
	ErrMonthlyRateNeeded = errors.New("customer rate must be a monthly rate")
)

type CreateRequest struct {
	Name        string       `json:"name"`
	Document    string       `json:"document"`
	Email       string       `json:"email"`
	Plate       string       `json:"plate"`
	VehicleType string       `json:"vehicle_type"`
	RateID      snowflake.ID `json:"rate_id"`
}

type UpdateRequest struct {
	Name   *string       `json:"name"`
	Email  *string       `json:"email"`
	RateID *snowflake.ID `json:"rate_id"`
	Active *bool         `json:"active"`
}

// ChargePreview is the monthly amount a customer would be billed for the
// period starting on PeriodStart.
type ChargePreview struct {
	Customer *Customer                  `json:"customer"`
	Price    *pricingdomain.PriceResult `json:"price"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Customer, error)
	Get(ctx context.Context, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Customer, error)

	// PreviewCharge prices one billing period for the customer's monthly
	// rate. periodStart uses the 2006-01-02 layout.
	PreviewCharge(ctx context.Context, id snowflake.ID, periodStart string) (*ChargePreview, error)
}
