package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a monthly subscriber with a registered plate. The rate it
// points at is expected to be a monthly rate, which the charge preview
// prices as a flat period amount.
type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Document    string       `gorm:"type:text" json:"document"`
	Email       string       `gorm:"type:text" json:"email"`
	Plate       string       `gorm:"type:text;not null;uniqueIndex" json:"plate"`
	VehicleType string       `gorm:"type:text;not null" json:"vehicle_type"`
	RateID      snowflake.ID `gorm:"not null" json:"rate_id"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
