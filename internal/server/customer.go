package server

import (
	"github.com/gin-gonic/gin"
	customerdomain "github.com/vagaparlabs/vagapark/internal/customer/domain"
)

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	customer, err := s.customerSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, customer)
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	customer, err := s.customerSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, customer)
}

func (s *Server) ListCustomers(c *gin.Context) {
	var filter customerdomain.ListFilter
	filter.Plate = c.Query("plate")

	customers, err := s.customerSvc.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, customers)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req customerdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	customer, err := s.customerSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, customer)
}

func (s *Server) PreviewCustomerCharge(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	periodStart := c.Query("period_start")
	if periodStart == "" {
		abortBadRequest(c, "period_start is required")
		return
	}

	preview, err := s.customerSvc.PreviewCharge(c.Request.Context(), id, periodStart)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, preview)
}
