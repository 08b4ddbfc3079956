package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
)

type previewPriceRequest struct {
	RateID      snowflake.ID           `json:"rate_id" binding:"required"`
	VehicleType string                 `json:"vehicle_type" binding:"required"`
	EntryDate   string                 `json:"entry_date" binding:"required"`
	EntryTime   string                 `json:"entry_time"`
	ExitDate    string                 `json:"exit_date" binding:"required"`
	ExitTime    string                 `json:"exit_time"`
	Options     *pricingdomain.Options `json:"options,omitempty"`
}

// PreviewPrice prices an arbitrary stay without touching any ticket. Kiosks
// use it for "how much would this cost" displays.
func (s *Server) PreviewPrice(c *gin.Context) {
	var req previewPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	rate, err := s.rateRepo.GetRate(ctx, req.RateID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if rate == nil {
		abortWithError(c, ratedomain.ErrRateNotFound)
		return
	}

	result, err := s.pricingSvc.CalculateAdvancedPrice(ctx, pricingdomain.Ticket{
		VehicleType: req.VehicleType,
		EntryDate:   req.EntryDate,
		EntryTime:   req.EntryTime,
	}, rate, req.ExitDate, req.ExitTime, req.Options)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, result)
}
