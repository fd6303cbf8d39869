package storage

import (
	"fmt"
	"time"

	"wunderground-monitor/internal/fetch"
	"wunderground-monitor/internal/weather"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

type kindCount struct {
	Kind  string
	Count int64
}

func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&FetchRecord{}, &ObservationRecord{}, &AlertRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

// SaveFetch records a finished request. It matches fetch.Observer once
// wrapped, so every outbound call ends up in fetch_records.
func (d *Database) SaveFetch(o fetch.Outcome) error {
	rec := &FetchRecord{
		RequestID:  o.RequestID,
		URL:        o.URL,
		Kind:       o.Kind,
		StatusCode: o.StatusCode,
		StartedAt:  o.StartedAt,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return d.db.Create(rec).Error
}

func (d *Database) GetRecentFetches(limit int) ([]FetchRecord, error) {
	var records []FetchRecord
	result := d.db.Order("started_at desc").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (d *Database) GetFetchStats(since time.Time) (*FetchStats, error) {
	stats := &FetchStats{Since: since, ByKind: map[string]int64{}}

	var counts []kindCount
	result := d.db.Model(&FetchRecord{}).
		Select("kind, COUNT(*) AS count").
		Where("started_at >= ?", since).
		Group("kind").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	for _, c := range counts {
		stats.ByKind[c.Kind] = c.Count
		stats.Total += c.Count
	}

	if stats.Total > 0 {
		avg, err := d.averageDuration(since)
		if err != nil {
			return nil, err
		}
		stats.AvgMS = avg
	}

	return stats, nil
}

func (d *Database) averageDuration(since time.Time) (float64, error) {
	var avg float64
	result := d.db.Model(&FetchRecord{}).
		Where("started_at >= ?", since).
		Select("AVG(duration_ms)").
		Scan(&avg)
	if result.Error != nil {
		return 0, result.Error
	}
	return avg, nil
}

func (d *Database) SaveObservation(query string, c *weather.CurrentConditions, at time.Time) error {
	rec := &ObservationRecord{
		Timestamp:       at,
		Query:           query,
		Units:           c.Units.String(),
		StationID:       c.Current.StationID,
		City:            c.Display.City,
		ObservationTime: c.Time.ObservationTime,
		Weather:         c.Current.Weather,
		Icon:            c.Current.Icon,
		Temperature:     c.Temperature.Temp,
		Dewpoint:        c.Temperature.Dewpoint,
		HeatIndex:       c.Temperature.HeatIndex,
		FeelsLike:       c.Temperature.FeelsLike,
		Humidity:        c.Current.Humidity,
		Pressure:        c.Current.Pressure,
		Visibility:      c.Current.Visibility,
		UV:              c.Current.UV,
		WindDirection:   c.Wind.Direction,
		WindDegrees:     c.Wind.Degrees,
		WindSpeed:       c.Wind.Speed,
		WindGust:        c.Wind.GustSpeed,
	}
	return d.db.Create(rec).Error
}

func (d *Database) GetLatestObservation() (*ObservationRecord, error) {
	var rec ObservationRecord
	result := d.db.Order("timestamp desc").First(&rec)
	if result.Error != nil {
		return nil, result.Error
	}
	return &rec, nil
}

func (d *Database) GetObservationsByRange(from, to time.Time) ([]ObservationRecord, error) {
	var records []ObservationRecord
	result := d.db.Where("timestamp BETWEEN ? AND ?", from, to).
		Order("timestamp desc").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (d *Database) GetObservationsWithLimit(limit int) ([]ObservationRecord, error) {
	var records []ObservationRecord
	result := d.db.Order("timestamp desc").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// SaveAlerts stores alerts not seen before and refreshes LastSeen on the
// rest. It returns only the alerts that were new.
func (d *Database) SaveAlerts(query string, alerts []weather.Alert, seen time.Time) ([]weather.Alert, error) {
	var fresh []weather.Alert

	err := d.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range alerts {
			var n int64
			if err := alertIdentity(tx, a).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				if err := alertIdentity(tx, a).Update("last_seen", seen).Error; err != nil {
					return err
				}
				continue
			}

			rec := &AlertRecord{
				Query:       query,
				Type:        a.Type,
				Date:        a.Date,
				Expires:     a.Expires,
				Description: a.Description,
				Message:     a.Message,
				FirstSeen:   seen,
				LastSeen:    seen,
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			fresh = append(fresh, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save alerts: %w", err)
	}
	return fresh, nil
}

func alertIdentity(tx *gorm.DB, a weather.Alert) *gorm.DB {
	return tx.Model(&AlertRecord{}).
		Where("type = ? AND date = ? AND expires = ?", a.Type, a.Date, a.Expires)
}

// GetActiveAlerts returns alerts reported at or after since.
func (d *Database) GetActiveAlerts(since time.Time) ([]AlertRecord, error) {
	var records []AlertRecord
	result := d.db.Where("last_seen >= ?", since).
		Order("first_seen desc").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (d *Database) GetAlertsWithLimit(limit int) ([]AlertRecord, error) {
	var records []AlertRecord
	result := d.db.Order("first_seen desc").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// CleanOldRecords deletes fetches and observations older than olderThan and
// alerts not reported within that window.
func (d *Database) CleanOldRecords(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	if err := d.db.Unscoped().Where("started_at < ?", cutoff).Delete(&FetchRecord{}).Error; err != nil {
		return err
	}
	if err := d.db.Unscoped().Where("timestamp < ?", cutoff).Delete(&ObservationRecord{}).Error; err != nil {
		return err
	}
	return d.db.Unscoped().Where("last_seen < ?", cutoff).Delete(&AlertRecord{}).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
