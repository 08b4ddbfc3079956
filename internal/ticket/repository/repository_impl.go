package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ticketdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, ticket *ticketdomain.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*ticketdomain.Ticket, error) {
	var ticket ticketdomain.Ticket
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) FindOpenByPlate(ctx context.Context, plate string) (*ticketdomain.Ticket, error) {
	var ticket ticketdomain.Ticket
	err := r.db.WithContext(ctx).
		Where("UPPER(plate) = ? AND status = ?", strings.ToUpper(plate), ticketdomain.TicketStatusOpen).
		First(&ticket).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) Update(ctx context.Context, ticket *ticketdomain.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *repository) List(ctx context.Context, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, error) {
	query := r.db.WithContext(ctx).Model(&ticketdomain.Ticket{})
	if filter.Plate != "" {
		query = query.Where("UPPER(plate) = ?", strings.ToUpper(filter.Plate))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var tickets []ticketdomain.Ticket
	err := query.Order("entry_at DESC").Find(&tickets).Error
	return tickets, err
}
