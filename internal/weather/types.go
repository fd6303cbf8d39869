package weather

import "context"

// Provider is the data API as seen by the collector and the HTTP server.
type Provider interface {
	Conditions(ctx context.Context) (*CurrentConditions, error)
	Almanac(ctx context.Context) (*Almanac, error)
	Astronomy(ctx context.Context) (*Astronomy, error)
	Forecast(ctx context.Context) (*Forecast, error)
	Hourly(ctx context.Context) (*HourlyForecast, error)
	Hurricanes(ctx context.Context) ([]HurricaneState, error)
	Alerts(ctx context.Context) ([]Alert, error)
}

// HourlyForecast pairs the per-hour readings with the per-hour wind.
type HourlyForecast struct {
	Units Units        `json:"units"`
	Slots []HourlySlot `json:"slots"`
	Wind  []HourlyWind `json:"wind"`
}
