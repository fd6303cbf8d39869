// Package search runs location autocomplete queries. A Searcher keeps at most
// one query in flight: starting a new one cancels the previous, and a query
// that finishes after being replaced reports ErrSuperseded instead of results.
package search

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"wunderground-monitor/internal/fetch"
	"wunderground-monitor/internal/weather"
)

const DefaultURL = "http://autocomplete.wunderground.com/aq"

// ErrSuperseded is returned by a search that was replaced by a newer one.
var ErrSuperseded = errors.New("search superseded by a newer query")

// UnknownLocation is substituted for undecodable results under
// FallbackPlaceholder.
var UnknownLocation = weather.Location{
	Name:      "none",
	Timezone:  "tzs",
	Latitude:  "lat",
	Longitude: "lon",
}

// Policy decides what a search returns when the response cannot be decoded
// into at least one location. Fetch errors are always returned as is.
type Policy int

const (
	// Propagate returns the decode error or weather.ErrNoData.
	Propagate Policy = iota
	// FallbackPlaceholder returns a single UnknownLocation.
	FallbackPlaceholder
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "propagate":
		return Propagate, nil
	case "placeholder", "fallback":
		return FallbackPlaceholder, nil
	}
	return Propagate, errors.New("unknown search policy " + s)
}

type Results struct {
	RequestID   string             `json:"request_id"`
	Query       string             `json:"query"`
	Locations   []weather.Location `json:"locations"`
	Placeholder bool               `json:"placeholder"`
}

type Config struct {
	URL     string
	Fetcher *fetch.Fetcher
	Options weather.DecodeOptions
	Policy  Policy
}

type Searcher struct {
	baseURL string
	fetcher *fetch.Fetcher
	opts    weather.DecodeOptions
	policy  Policy

	mu      sync.Mutex
	current *fetch.Request
}

func New(cfg Config) *Searcher {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultURL
	}
	f := cfg.Fetcher
	if f == nil {
		f = fetch.New(fetch.Config{})
	}
	return &Searcher{
		baseURL: baseURL,
		fetcher: f,
		opts:    cfg.Options,
		policy:  cfg.Policy,
	}
}

// URL returns the autocomplete URL for text.
func (s *Searcher) URL(text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	sep := "?"
	if strings.Contains(s.baseURL, "?") {
		sep = "&"
	}
	return s.baseURL + sep + "query=" + escaped
}

// Search looks up text, replacing any search still in flight. Blank text
// only cancels the previous search and returns empty results.
func (s *Searcher) Search(ctx context.Context, text string) (*Results, error) {
	return s.Start(ctx, text).Wait(ctx)
}

// Pending is a search that has been issued but not yet read.
type Pending struct {
	s    *Searcher
	req  *fetch.Request
	text string
}

// Start issues a search and makes it the current one before returning, so
// the order of Start calls decides which search wins.
func (s *Searcher) Start(ctx context.Context, text string) *Pending {
	if strings.TrimSpace(text) == "" {
		s.drop()
		return &Pending{s: s, text: text}
	}
	return &Pending{s: s, req: s.start(ctx, text), text: text}
}

// Wait blocks for the results. It returns ErrSuperseded if a newer search
// was started in the meantime.
func (p *Pending) Wait(ctx context.Context) (*Results, error) {
	if p.req == nil {
		return &Results{Query: p.text}, nil
	}

	value, err := p.req.Wait(ctx)

	if !p.s.finish(p.req) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	res := &Results{RequestID: p.req.ID, Query: p.text}
	locs, err := weather.DecodeLocations(value, p.s.opts)
	if err != nil {
		if p.s.policy != FallbackPlaceholder {
			return nil, err
		}
		res.Locations = []weather.Location{UnknownLocation}
		res.Placeholder = true
		return res, nil
	}
	res.Locations = locs
	return res, nil
}

// Cancel aborts the search in flight, if any.
func (s *Searcher) Cancel() {
	s.drop()
}

// start cancels the previous search and issues the new one under the same
// lock, so the latest caller always owns current.
func (s *Searcher) start(ctx context.Context, text string) *fetch.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
	}
	s.current = s.fetcher.Start(ctx, s.URL(text))
	return s.current
}

func (s *Searcher) drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
}

// finish reports whether req is still the latest search and clears it.
func (s *Searcher) finish(req *fetch.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != req {
		return false
	}
	s.current = nil
	return true
}
