package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/vagaparlabs/vagapark/internal/customer/domain"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	receiptdomain "github.com/vagaparlabs/vagapark/internal/receipt/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
)

type DataResponse struct {
	Data any `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusForError(err), ErrorResponse{Error: err.Error()})
}

func abortBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ratedomain.ErrRateNotFound),
		errors.Is(err, ticketdomain.ErrTicketNotFound),
		errors.Is(err, customerdomain.ErrCustomerNotFound):
		return http.StatusNotFound

	case errors.Is(err, ticketdomain.ErrPlateAlreadyParked),
		errors.Is(err, ticketdomain.ErrTicketClosed),
		errors.Is(err, ratedomain.ErrDuplicateCode),
		errors.Is(err, customerdomain.ErrPlateTaken):
		return http.StatusConflict

	case errors.Is(err, pricingdomain.ErrInvalidTemporalRange),
		errors.Is(err, pricingdomain.ErrUnparseableDateTime),
		errors.Is(err, pricingdomain.ErrMissingRate),
		errors.Is(err, ratedomain.ErrInvalidRateType),
		errors.Is(err, ratedomain.ErrInvalidValue),
		errors.Is(err, ticketdomain.ErrPlateRequired),
		errors.Is(err, customerdomain.ErrMonthlyRateNeeded),
		errors.Is(err, customerdomain.ErrCustomerInactive),
		errors.Is(err, receiptdomain.ErrTicketStillOpen):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
