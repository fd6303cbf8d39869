package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"wunderground-monitor/config"
	"wunderground-monitor/internal/collector"
	"wunderground-monitor/internal/search"
	"wunderground-monitor/internal/storage"
	"wunderground-monitor/internal/weather"

	"github.com/gin-gonic/gin"
)

type Server struct {
	router      *gin.Engine
	server      *http.Server
	collector   *collector.Collector
	db          *storage.Database
	port        int
	config      *config.Config
	configPath  string
	configMutex sync.RWMutex
	client      *weather.Client
	searchOpts  search.Config
	saveConfig  func(path, query, units string) error
}

type ServerConfig struct {
	Port       int
	Collector  *collector.Collector
	Database   *storage.Database
	Client     *weather.Client
	Search     search.Config
	Config     *config.Config
	ConfigPath string
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:     router,
		collector:  cfg.Collector,
		db:         cfg.Database,
		port:       cfg.Port,
		config:     cfg.Config,
		configPath: cfg.ConfigPath,
		client:     cfg.Client,
		searchOpts: cfg.Search,
		saveConfig: config.SaveLocation,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.statusHandler)
		api.POST("/collect", s.collectHandler)

		// Live data
		api.GET("/conditions", s.conditionsHandler)
		api.GET("/almanac", s.almanacHandler)
		api.GET("/astronomy", s.astronomyHandler)
		api.GET("/forecast", s.forecastHandler)
		api.GET("/hourly", s.hourlyHandler)
		api.GET("/hurricanes", s.hurricanesHandler)
		api.GET("/alerts", s.alertsHandler)

		// Location search
		api.GET("/search", s.searchHandler)
		api.GET("/search/ws", s.searchSocketHandler)

		// History
		api.GET("/history/observations", s.observationsHandler)
		api.GET("/history/observations/latest", s.latestObservationHandler)
		api.GET("/history/alerts", s.alertHistoryHandler)
		api.GET("/fetches", s.fetchesHandler)
		api.GET("/fetches/stats", s.fetchStatsHandler)

		// Config routes
		api.GET("/config/location", s.getLocationConfigHandler)
		api.PUT("/config/location", s.updateLocationConfigHandler)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	collecting := false
	var lastCollected *time.Time
	if s.collector != nil {
		collecting = s.collector.IsCollecting()
		if snap := s.collector.GetLatestData(); snap != nil {
			lastCollected = &snap.Timestamp
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"collecting":     collecting,
		"last_collected": lastCollected,
		"timestamp":      time.Now(),
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	var snap *collector.Snapshot
	if s.collector != nil {
		snap = s.collector.GetLatestData()
	}
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No data available yet",
		})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) collectHandler(c *gin.Context) {
	if s.collector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Collector not running"})
		return
	}
	snap, err := s.collector.CollectOnce(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func queryLimit(c *gin.Context, def, maxLimit int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 || limit > maxLimit {
		return def
	}
	return limit
}

func (s *Server) requireDB(c *gin.Context) bool {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not available"})
		return false
	}
	return true
}

func (s *Server) observationsHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}
	fromStr := c.Query("from")
	toStr := c.Query("to")
	limit := queryLimit(c, 100, 1000)

	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date format"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date format"})
			return
		}

		records, err := s.db.GetObservationsByRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	records, err := s.db.GetObservationsWithLimit(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) latestObservationHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}
	record, err := s.db.GetLatestObservation()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) alertHistoryHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}

	if sinceStr := c.Query("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'since' date format"})
			return
		}
		records, err := s.db.GetActiveAlerts(since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	records, err := s.db.GetAlertsWithLimit(queryLimit(c, 50, 500))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) fetchesHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}
	records, err := s.db.GetRecentFetches(queryLimit(c, 50, 500))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) fetchStatsHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}
	window, err := time.ParseDuration(c.DefaultQuery("window", "24h"))
	if err != nil || window <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'window' duration"})
		return
	}
	stats, err := s.db.GetFetchStats(time.Now().Add(-window))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
