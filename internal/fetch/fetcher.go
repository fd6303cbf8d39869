// Package fetch performs single GET requests against the weather API and
// classifies the one outcome of each: transport failure, non-200 status,
// undecodable body, or a parsed JSON object.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"wunderground-monitor/internal/jsonpath"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestTimeout  = 15 * time.Second
	DefaultResourceTimeout = 30 * time.Second
)

// Outcome kinds reported to observers.
const (
	KindSuccess   = "success"
	KindTransport = "transport"
	KindHTTP      = "http_status"
	KindJSON      = "json_decode"
)

// Outcome describes how one request ended.
type Outcome struct {
	RequestID  string
	URL        string
	Kind       string
	StatusCode int
	Err        error
	StartedAt  time.Time
	Duration   time.Duration
}

// Observer is told about every finished request.
type Observer func(Outcome)

type Config struct {
	// RequestTimeout bounds connecting and waiting for response headers.
	RequestTimeout time.Duration
	// ResourceTimeout bounds the whole exchange including the body.
	ResourceTimeout time.Duration
	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64
	Burst     int
	Observer  Observer
	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	observer Observer
}

func New(cfg Config) *Fetcher {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ResourceTimeout <= 0 {
		cfg.ResourceTimeout = DefaultResourceTimeout
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.RequestTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   cfg.RequestTimeout,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			IdleConnTimeout:       90 * time.Second,
		}
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   cfg.ResourceTimeout,
			Transport: transport,
		},
		observer: cfg.Observer,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return f
}

// Fetch issues one GET to url and returns the decoded JSON object.
func (f *Fetcher) Fetch(ctx context.Context, url string) (any, error) {
	return f.do(ctx, uuid.NewString(), url)
}

func (f *Fetcher) do(ctx context.Context, id, url string) (any, error) {
	started := time.Now()
	value, status, err := f.get(ctx, url)

	if f.observer != nil {
		f.observer(Outcome{
			RequestID:  id,
			URL:        url,
			Kind:       Classify(err),
			StatusCode: status,
			Err:        err,
			StartedAt:  started,
			Duration:   time.Since(started),
		})
	}

	return value, err
}

func (f *Fetcher) get(ctx context.Context, url string) (any, int, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, 0, &TransportError{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, &HTTPStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	value, err := jsonpath.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, resp.StatusCode, &JSONDecodeError{Err: err}
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, resp.StatusCode, &JSONDecodeError{Err: errors.New("top-level value is not an object")}
	}

	return value, resp.StatusCode, nil
}

// Classify names the outcome kind of an error returned by Fetch.
func Classify(err error) string {
	var (
		statusErr *HTTPStatusError
		jsonErr   *JSONDecodeError
	)
	switch {
	case err == nil:
		return KindSuccess
	case errors.As(err, &statusErr):
		return KindHTTP
	case errors.As(err, &jsonErr):
		return KindJSON
	default:
		return KindTransport
	}
}
