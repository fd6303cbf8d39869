package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"wunderground-monitor/internal/weather"
)

// Store persists what the collector gathers. *storage.Database satisfies it.
type Store interface {
	SaveObservation(query string, c *weather.CurrentConditions, at time.Time) error
	SaveAlerts(query string, alerts []weather.Alert, seen time.Time) ([]weather.Alert, error)
	CleanOldRecords(olderThan time.Duration) error
}

// Publisher forwards collected data. *mqtt.Publisher satisfies it.
type Publisher interface {
	PublishConditions(c *weather.CurrentConditions) error
	PublishAlerts(alerts []weather.Alert) error
	PublishHurricanes(storms []weather.HurricaneState) error
	PublishHomeAssistantDiscovery(station string, u weather.Units) error
}

// Snapshot is the result of one collection cycle.
type Snapshot struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Query      string                    `json:"query"`
	Units      weather.Units             `json:"units"`
	Conditions *weather.CurrentConditions `json:"conditions,omitempty"`
	Alerts     []weather.Alert           `json:"alerts"`
	NewAlerts  []weather.Alert           `json:"new_alerts,omitempty"`
	Hurricanes []weather.HurricaneState  `json:"hurricanes"`
	Errors     map[string]string         `json:"errors,omitempty"`
}

type Collector struct {
	provider  weather.Provider
	query     string
	units     weather.Units
	db        Store
	publisher Publisher
	interval  time.Duration
	retention time.Duration
	enabled   bool

	// cycle serializes CollectOnce between the ticker and API callers and
	// guards announced and lastCleanup. announced is station plus units.
	cycle       sync.Mutex
	announced   string
	lastCleanup time.Time

	mu           sync.RWMutex
	latest       *Snapshot
	isCollecting bool
}

type CollectorConfig struct {
	Provider  weather.Provider
	Query     string
	Units     weather.Units
	Database  Store
	Publisher Publisher
	Interval  time.Duration
	Retention time.Duration
	Enabled   bool
}

func NewCollector(cfg CollectorConfig) *Collector {
	return &Collector{
		provider:  cfg.Provider,
		query:     cfg.Query,
		units:     cfg.Units,
		db:        cfg.Database,
		publisher: cfg.Publisher,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		enabled:   cfg.Enabled,
	}
}

func (c *Collector) Start(ctx context.Context) error {
	if !c.enabled {
		log.Println("Collector is disabled")
		return nil
	}
	if c.interval <= 0 {
		return fmt.Errorf("collector interval must be positive, got %s", c.interval)
	}

	c.mu.Lock()
	c.isCollecting = true
	c.mu.Unlock()

	log.Printf("Starting collector for %q with interval %s", c.query, c.interval)

	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Collector stopped")
			c.mu.Lock()
			c.isCollecting = false
			c.mu.Unlock()
			return nil
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

func (c *Collector) collect(ctx context.Context) {
	if _, err := c.CollectOnce(ctx); err != nil {
		log.Printf("Error collecting conditions: %v", err)
	}
}

// CollectOnce runs a full cycle: conditions, alerts and hurricanes. It
// returns an error only when conditions could not be read; the snapshot is
// stored either way.
func (c *Collector) CollectOnce(ctx context.Context) (*Snapshot, error) {
	c.cycle.Lock()
	defer c.cycle.Unlock()

	c.mu.RLock()
	provider := c.provider
	query := c.query
	units := c.units
	c.mu.RUnlock()

	if provider == nil {
		return nil, errors.New("collector has no weather provider")
	}

	snap := &Snapshot{
		Timestamp: time.Now(),
		Query:     query,
		Units:     units,
		Errors:    map[string]string{},
	}

	conditions, condErr := provider.Conditions(ctx)
	if condErr != nil {
		snap.Errors["conditions"] = condErr.Error()
	} else {
		snap.Conditions = conditions
	}

	alerts, err := provider.Alerts(ctx)
	switch {
	case errors.Is(err, weather.ErrNoData):
		snap.Alerts = []weather.Alert{}
	case err != nil:
		snap.Errors["alerts"] = err.Error()
		log.Printf("Error reading alerts: %v", err)
	default:
		snap.Alerts = alerts
	}

	storms, err := provider.Hurricanes(ctx)
	switch {
	case errors.Is(err, weather.ErrNoData):
		snap.Hurricanes = []weather.HurricaneState{}
	case err != nil:
		snap.Errors["hurricanes"] = err.Error()
		log.Printf("Error reading hurricanes: %v", err)
	default:
		snap.Hurricanes = storms
	}

	if len(snap.Errors) == 0 {
		snap.Errors = nil
	}

	c.persist(snap)
	c.publish(snap)

	c.mu.Lock()
	// a location change during the cycle makes this snapshot stale
	if c.provider == provider && c.query == query {
		c.latest = snap
	}
	c.mu.Unlock()

	if conditions != nil {
		log.Printf("Collected %s: %.1f%s, %s, wind %s %.1f, %d alerts, %d storms",
			conditions.Current.StationID,
			conditions.Temperature.Temp, units.Pick("F", "C"),
			conditions.Current.Weather,
			conditions.Wind.Direction, conditions.Wind.Speed,
			len(snap.Alerts), len(snap.Hurricanes))
	}

	return snap, condErr
}

func (c *Collector) persist(snap *Snapshot) {
	if c.db == nil {
		return
	}

	if snap.Conditions != nil {
		if err := c.db.SaveObservation(snap.Query, snap.Conditions, snap.Timestamp); err != nil {
			log.Printf("Error saving observation: %v", err)
		}
	}

	if snap.Alerts != nil {
		fresh, err := c.db.SaveAlerts(snap.Query, snap.Alerts, snap.Timestamp)
		if err != nil {
			log.Printf("Error saving alerts: %v", err)
		}
		for _, a := range fresh {
			log.Printf("New alert %s: %s (expires %s)", a.Type, a.Description, a.Expires)
		}
		snap.NewAlerts = fresh
	}

	if c.retention > 0 && time.Since(c.lastCleanup) > 24*time.Hour {
		if err := c.db.CleanOldRecords(c.retention); err != nil {
			log.Printf("Error cleaning old records: %v", err)
		}
		c.lastCleanup = time.Now()
	}
}

func (c *Collector) publish(snap *Snapshot) {
	if c.publisher == nil {
		return
	}

	if snap.Conditions != nil {
		station := snap.Conditions.Current.StationID
		key := station + "/" + snap.Units.String()
		if c.announced != key {
			if err := c.publisher.PublishHomeAssistantDiscovery(station, snap.Units); err != nil {
				log.Printf("Error publishing discovery: %v", err)
			} else {
				c.announced = key
			}
		}
		if err := c.publisher.PublishConditions(snap.Conditions); err != nil {
			log.Printf("Error publishing to MQTT: %v", err)
		}
	}
	if snap.Alerts != nil {
		if err := c.publisher.PublishAlerts(snap.Alerts); err != nil {
			log.Printf("Error publishing alerts: %v", err)
		}
	}
	if snap.Hurricanes != nil {
		if err := c.publisher.PublishHurricanes(snap.Hurricanes); err != nil {
			log.Printf("Error publishing hurricanes: %v", err)
		}
	}
}

func (c *Collector) GetLatestData() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

func (c *Collector) IsCollecting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isCollecting
}

// Query returns the location and units currently collected.
func (c *Collector) Query() (string, weather.Units) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query, c.units
}

// UpdateLocation switches the collector to a new provider at runtime. The
// next cycle uses it; the current snapshot is dropped.
func (c *Collector) UpdateLocation(provider weather.Provider, query string, units weather.Units) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Printf("Updating collector location: %q (%s)", query, units)
	c.provider = provider
	c.query = query
	c.units = units
	c.latest = nil
}
