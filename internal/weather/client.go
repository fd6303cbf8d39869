package weather

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "http://api.wunderground.com/api"

// Fetcher returns the decoded JSON document found at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (any, error)
}

// Client talks to the Weather Underground data API for one location query.
type Client struct {
	apiKey    string
	query     string
	baseURL   string
	units     Units
	opts      DecodeOptions
	hourlyMin int
	fetcher   Fetcher
}

type ClientConfig struct {
	APIKey  string
	Query   string
	BaseURL string
	Units   Units
	Options DecodeOptions
	// HourlyMinItems overrides Options.MinItems for the hourly forecast.
	HourlyMinItems int
	Fetcher        Fetcher
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:    cfg.APIKey,
		query:     cfg.Query,
		baseURL:   baseURL,
		units:     cfg.Units,
		opts:      cfg.Options,
		hourlyMin: cfg.HourlyMinItems,
		fetcher:   cfg.Fetcher,
	}
}

// WithUnits returns a copy of c reading values in u.
func (c *Client) WithUnits(u Units) *Client {
	cp := *c
	cp.units = u
	return &cp
}

// WithLocation returns a copy of c for another location query.
func (c *Client) WithLocation(query string) *Client {
	cp := *c
	cp.query = query
	return &cp
}

func (c *Client) Units() Units {
	return c.units
}

func (c *Client) Query() string {
	return c.query
}

// Redact hides the API key in a URL built by c.
func (c *Client) Redact(rawURL string) string {
	if c.apiKey == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, "/"+url.PathEscape(c.apiKey)+"/", "/***/")
}

// FeatureURL builds <base>/<key>/<feature>/q/<query>.json.
func (c *Client) FeatureURL(feature string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: api key is empty", ErrNotConfigured)
	}
	if strings.TrimSpace(c.query) == "" {
		return "", fmt.Errorf("%w: location query is empty", ErrNotConfigured)
	}

	segments := strings.Split(strings.Trim(c.query, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s/q/%s.json", c.baseURL, url.PathEscape(c.apiKey), feature, strings.Join(segments, "/")), nil
}

func (c *Client) get(ctx context.Context, feature string) (any, error) {
	endpoint, err := c.FeatureURL(feature)
	if err != nil {
		return nil, err
	}
	doc, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("wunderground %s: %w", feature, err)
	}
	return doc, nil
}

func (c *Client) Conditions(ctx context.Context) (*CurrentConditions, error) {
	doc, err := c.get(ctx, "conditions")
	if err != nil {
		return nil, err
	}
	return DecodeConditions(doc, c.units)
}

func (c *Client) Almanac(ctx context.Context) (*Almanac, error) {
	doc, err := c.get(ctx, "almanac")
	if err != nil {
		return nil, err
	}
	a, err := DecodeAlmanac(doc, c.units)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Astronomy(ctx context.Context) (*Astronomy, error) {
	doc, err := c.get(ctx, "astronomy")
	if err != nil {
		return nil, err
	}
	a, err := DecodeAstronomy(doc)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Forecast(ctx context.Context) (*Forecast, error) {
	doc, err := c.get(ctx, "forecast10day")
	if err != nil {
		return nil, err
	}
	return DecodeForecast(doc, c.units, c.opts)
}

func (c *Client) Hourly(ctx context.Context) (*HourlyForecast, error) {
	doc, err := c.get(ctx, "hourly10day")
	if err != nil {
		return nil, err
	}
	opts := c.opts
	if c.hourlyMin > 0 {
		opts.MinItems = c.hourlyMin
	}
	slots, err := DecodeHourly(doc, c.units, opts)
	if err != nil {
		return nil, err
	}
	wind, err := DecodeHourlyWind(doc, c.units, opts)
	if err != nil {
		return nil, err
	}
	return &HourlyForecast{Units: c.units, Slots: slots, Wind: wind}, nil
}

// Hurricanes is not tied to the location query.
func (c *Client) Hurricanes(ctx context.Context) ([]HurricaneState, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is empty", ErrNotConfigured)
	}
	endpoint := fmt.Sprintf("%s/%s/currenthurricane/view.json", c.baseURL, url.PathEscape(c.apiKey))
	doc, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("wunderground currenthurricane: %w", err)
	}
	return DecodeHurricanes(doc, c.opts)
}

func (c *Client) Alerts(ctx context.Context) ([]Alert, error) {
	doc, err := c.get(ctx, "alerts")
	if err != nil {
		return nil, err
	}
	return DecodeAlerts(doc, c.opts)
}

var _ Provider = (*Client)(nil)
