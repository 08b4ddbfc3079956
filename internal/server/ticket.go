package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
)

func (s *Server) OpenTicket(c *gin.Context) {
	var req ticketdomain.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	ticket, err := s.ticketSvc.Open(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, ticket)
}

func (s *Server) GetTicket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ticket, err := s.ticketSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, ticket)
}

func (s *Server) ListTickets(c *gin.Context) {
	var filter ticketdomain.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortBadRequest(c, "invalid query")
		return
	}

	tickets, err := s.ticketSvc.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, tickets)
}

func (s *Server) PreviewTicket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, ok := bindCheckoutRequest(c)
	if !ok {
		return
	}

	price, err := s.ticketSvc.Preview(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, price)
}

func (s *Server) CheckoutTicket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, ok := bindCheckoutRequest(c)
	if !ok {
		return
	}

	resp, err := s.ticketSvc.Checkout(c.Request.Context(), id, req)
	if err != nil {
		// A replay with an idempotency key gets the original outcome
		// instead of a conflict.
		if errors.Is(err, ticketdomain.ErrTicketClosed) && idempotencyKeyFromHeader(c) != "" {
			if replay, ok := s.replayCheckout(c, id); ok {
				respondData(c, replay)
				return
			}
		}
		abortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) replayCheckout(c *gin.Context, id snowflake.ID) (*ticketdomain.CheckoutResponse, bool) {
	ticket, err := s.ticketSvc.Get(c.Request.Context(), id)
	if err != nil || ticket.Status != ticketdomain.TicketStatusClosed || len(ticket.PriceSnapshot) == 0 {
		return nil, false
	}

	var price pricingdomain.PriceResult
	if err := json.Unmarshal(ticket.PriceSnapshot, &price); err != nil {
		return nil, false
	}
	return &ticketdomain.CheckoutResponse{Ticket: ticket, Price: &price}, true
}

func (s *Server) GetTicketReceipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	receipt, err := s.receiptSvc.Issue(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+receipt.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", receipt.PDF)
}

func bindCheckoutRequest(c *gin.Context) (ticketdomain.CheckoutRequest, bool) {
	var req ticketdomain.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBadRequest(c, "invalid request body")
			return req, false
		}
	}
	return req, true
}
