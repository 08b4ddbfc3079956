package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type readinessCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string           `json:"status"`
	Checks []readinessCheck `json:"checks"`
}

func (s *Server) GetReadiness(c *gin.Context) {
	ctx := c.Request.Context()
	ready := true
	checks := make([]readinessCheck, 0, 2)

	dbCheck := readinessCheck{Name: "database", Status: "ok"}
	if sqlDB, err := s.db.DB(); err != nil {
		dbCheck.Status = "error"
		dbCheck.Error = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbCheck.Status = "error"
		dbCheck.Error = err.Error()
	}
	if dbCheck.Status != "ok" {
		ready = false
	}
	checks = append(checks, dbCheck)

	if s.redis != nil {
		redisCheck := readinessCheck{Name: "redis", Status: "ok"}
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisCheck.Status = "error"
			redisCheck.Error = err.Error()
			ready = false
		}
		checks = append(checks, redisCheck)
	}

	status := http.StatusOK
	resp := readinessResponse{Status: "ready", Checks: checks}
	if !ready {
		status = http.StatusServiceUnavailable
		resp.Status = "not_ready"
	}
	c.JSON(status, resp)
}
