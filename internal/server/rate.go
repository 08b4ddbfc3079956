package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
)

func parseID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) CreateRate(c *gin.Context) {
	var req ratedomain.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	rate, err := s.rateSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, rate)
}

func (s *Server) UpdateRate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ratedomain.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	rate, err := s.rateSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, rate)
}

func (s *Server) GetRate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rate, err := s.rateSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, rate)
}

func (s *Server) ListRates(c *gin.Context) {
	var filter ratedomain.ListRatesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortBadRequest(c, "invalid query")
		return
	}

	rates, err := s.rateSvc.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, rates)
}

func (s *Server) CreateTimeWindow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ratedomain.CreateTimeWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	window, err := s.rateSvc.AddTimeWindow(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, window)
}

func (s *Server) ListTimeWindows(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	windows, err := s.rateSvc.ListTimeWindows(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, windows)
}

func (s *Server) CreateThreshold(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ratedomain.CreateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	threshold, err := s.rateSvc.AddThreshold(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, threshold)
}

func (s *Server) ListThresholds(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	thresholds, err := s.rateSvc.ListThresholds(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondData(c, thresholds)
}
