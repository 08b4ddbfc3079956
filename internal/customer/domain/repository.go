package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ListFilter struct {
	Plate  string
	Active *bool
}

type Repository interface {
	Insert(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, id snowflake.ID) (*Customer, error)
	FindByPlate(ctx context.Context, plate string) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
}
