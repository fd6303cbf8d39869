package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"wunderground-monitor/internal/weather"

	"github.com/gin-gonic/gin"
)

type LocationConfigResponse struct {
	Query string `json:"query"`
	Units string `json:"units"`
}

type LocationConfigRequest struct {
	Query string `json:"query" binding:"required"`
	Units string `json:"units"`
	// Verify fetches conditions for the new location before applying it.
	Verify *bool `json:"verify"`
}

func (s *Server) getLocationConfigHandler(c *gin.Context) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	resp := LocationConfigResponse{}
	if s.client != nil {
		resp.Query = s.client.Query()
		resp.Units = s.client.Units().String()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateLocationConfigHandler(c *gin.Context) {
	var req LocationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must not be empty"})
		return
	}

	current := s.currentClient()
	if current == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Weather client not configured"})
		return
	}

	units := current.Units()
	if req.Units != "" {
		u, err := weather.ParseUnits(req.Units)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		units = u
	}

	next := current.WithLocation(req.Query).WithUnits(units)

	// First, test the new location
	if req.Verify == nil || *req.Verify {
		if _, err := next.Conditions(c.Request.Context()); err != nil {
			status, body := errorStatus(err)
			body["error"] = fmt.Sprintf("Location test failed: %v", err)
			c.JSON(status, body)
			return
		}
	}

	s.configMutex.Lock()
	s.client = next
	if s.config != nil {
		s.config.Wunderground.Query = req.Query
		s.config.Wunderground.Units = units.String()
	}
	s.configMutex.Unlock()

	if s.collector != nil {
		s.collector.UpdateLocation(next, req.Query, units)
	}

	if err := s.saveConfig(s.configPath, req.Query, units.String()); err != nil {
		log.Printf("Warning: Failed to save config to file: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Location applied but not persisted to file",
			"warning": err.Error(),
		})
		return
	}

	log.Printf("Location updated: %q (%s)", req.Query, units)

	c.JSON(http.StatusOK, gin.H{
		"message": "Location updated successfully",
		"query":   req.Query,
		"units":   units.String(),
	})
}
