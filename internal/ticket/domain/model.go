// Package domain contains parking ticket models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket tracks one vehicle's stay from gate entry to checkout. The price
// snapshot preserves the full calculation result the ticket was settled
// with, breakdown included.
type Ticket struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	Barcode       string         `gorm:"type:text;not null;uniqueIndex" json:"barcode"`
	Plate         string         `gorm:"type:text;not null;index" json:"plate"`
	VehicleType   string         `gorm:"type:text;not null" json:"vehicle_type"`
	RateID        snowflake.ID   `gorm:"not null" json:"rate_id"`
	Status        TicketStatus   `gorm:"type:text;not null;index" json:"status"`
	EntryAt       time.Time      `gorm:"not null" json:"entry_at"`
	ExitAt        *time.Time     `json:"exit_at,omitempty"`
	AmountCents   int64          `gorm:"not null;default:0" json:"amount_cents"`
	AppliedRateID *snowflake.ID  `json:"applied_rate_id,omitempty"`
	PriceSnapshot datatypes.JSON `gorm:"type:jsonb" json:"price_snapshot,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (Ticket) TableName() string { return "tickets" }
