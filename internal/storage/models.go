package storage

import (
	"time"

	"gorm.io/gorm"
)

// FetchRecord is one outbound API request and how it ended.
type FetchRecord struct {
	gorm.Model
	RequestID  string    `gorm:"index" json:"request_id"`
	URL        string    `json:"url"`
	Kind       string    `gorm:"index" json:"kind"`
	StatusCode int       `json:"status_code"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

type ObservationRecord struct {
	gorm.Model
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Query     string    `gorm:"index" json:"query"`
	Units     string    `json:"units"`

	// Station
	StationID       string `json:"station_id"`
	City            string `json:"city"`
	ObservationTime string `json:"observation_time"`
	Weather         string `json:"weather"`
	Icon            string `json:"icon"`

	// Temperature
	Temperature float64  `json:"temperature"`
	Dewpoint    float64  `json:"dewpoint"`
	HeatIndex   *float64 `json:"heat_index,omitempty"`
	FeelsLike   string   `json:"feels_like"`

	// Atmosphere
	Humidity   string `json:"humidity"`
	Pressure   string `json:"pressure"`
	Visibility string `json:"visibility"`
	UV         string `json:"uv"`

	// Wind
	WindDirection string  `json:"wind_direction"`
	WindDegrees   float64 `json:"wind_degrees"`
	WindSpeed     float64 `json:"wind_speed"`
	WindGust      *string `json:"wind_gust,omitempty"`
}

// AlertRecord is unique by type, issue date and expiry.
type AlertRecord struct {
	gorm.Model
	Query       string    `gorm:"index" json:"query"`
	Type        string    `gorm:"uniqueIndex:idx_alert_identity" json:"type"`
	Date        string    `gorm:"uniqueIndex:idx_alert_identity" json:"date"`
	Expires     string    `gorm:"uniqueIndex:idx_alert_identity" json:"expires"`
	Description string    `json:"description"`
	Message     string    `json:"message"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `gorm:"index" json:"last_seen"`
}

type FetchStats struct {
	Since  time.Time        `json:"since"`
	Total  int64            `json:"total"`
	ByKind map[string]int64 `json:"by_kind"`
	AvgMS  float64          `json:"avg_duration_ms"`
}
