package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"wunderground-monitor/internal/fetch"
	"wunderground-monitor/internal/search"
	"wunderground-monitor/internal/weather"

	"github.com/gin-gonic/gin"
)

// errorStatus maps a fetch, decode or search error to an HTTP status and
// response body.
func errorStatus(err error) (int, gin.H) {
	body := gin.H{"error": err.Error()}

	var (
		statusErr    *fetch.HTTPStatusError
		transportErr *fetch.TransportError
		jsonErr      *fetch.JSONDecodeError
		decodeErr    *weather.DecodeError
	)

	switch {
	case errors.Is(err, weather.ErrNoData):
		return http.StatusNotFound, body
	case errors.Is(err, weather.ErrNotConfigured):
		return http.StatusServiceUnavailable, body
	case errors.Is(err, search.ErrSuperseded):
		return http.StatusConflict, body
	case errors.As(err, &statusErr):
		body["upstream_status"] = statusErr.Code
		return http.StatusBadGateway, body
	case errors.As(err, &transportErr):
		if isTimeout(transportErr) {
			return http.StatusGatewayTimeout, body
		}
		return http.StatusBadGateway, body
	case errors.As(err, &jsonErr):
		return http.StatusBadGateway, body
	case errors.As(err, &decodeErr):
		if path := decodeErr.Path(); path != "" {
			body["path"] = path
		}
		return http.StatusBadGateway, body
	}
	return http.StatusInternalServerError, body
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func writeError(c *gin.Context, err error) {
	status, body := errorStatus(err)
	c.JSON(status, body)
}

func (s *Server) currentClient() *weather.Client {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	return s.client
}

// requestClient returns the configured client, switched to the units given
// in ?units= when present.
func (s *Server) requestClient(c *gin.Context) (*weather.Client, bool) {
	client := s.currentClient()
	if client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Weather client not configured"})
		return nil, false
	}
	if raw, ok := c.GetQuery("units"); ok {
		u, err := weather.ParseUnits(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		client = client.WithUnits(u)
	}
	return client, true
}

// respond writes v, or the mapped error.
func respond[T any](c *gin.Context, v T, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) conditionsHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Conditions(c.Request.Context())
		respond(c, v, err)
	}
}

func (s *Server) almanacHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Almanac(c.Request.Context())
		respond(c, v, err)
	}
}

func (s *Server) astronomyHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Astronomy(c.Request.Context())
		respond(c, v, err)
	}
}

func (s *Server) forecastHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Forecast(c.Request.Context())
		respond(c, v, err)
	}
}

func (s *Server) hourlyHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Hourly(c.Request.Context())
		respond(c, v, err)
	}
}

func (s *Server) hurricanesHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Hurricanes(c.Request.Context())
		respond(c, v, err)
	}
}

func (s *Server) alertsHandler(c *gin.Context) {
	if client, ok := s.requestClient(c); ok {
		v, err := client.Alerts(c.Request.Context())
		respond(c, v, err)
	}
}
