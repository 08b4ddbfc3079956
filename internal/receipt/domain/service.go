package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrTicketStillOpen = errors.New("ticket has not been checked out")

// Receipt is a rendered PDF plus the metadata an HTTP handler needs to
// serve it as a download.
type Receipt struct {
	TicketID snowflake.ID
	Barcode  string
	Filename string
	PDF      []byte
}

type Service interface {
	Issue(ctx context.Context, ticketID snowflake.ID) (*Receipt, error)
}
