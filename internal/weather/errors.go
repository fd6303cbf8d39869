package weather

import (
	"errors"
	"fmt"

	"wunderground-monitor/internal/jsonpath"
)

// ErrNoData is returned when a list decodes to zero elements.
var ErrNoData = errors.New("no data")

// ErrNotConfigured is returned by a Client missing its key or location.
var ErrNotConfigured = errors.New("wunderground client not configured")

// DecodeError reports that a model could not be built from a response.
type DecodeError struct {
	Model string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Model, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Path returns the field path that failed, if known.
func (e *DecodeError) Path() string {
	var pe *jsonpath.PathError
	if errors.As(e.Err, &pe) {
		return pe.Path
	}
	return ""
}

func noData(model string) error {
	return fmt.Errorf("%s: %w", model, ErrNoData)
}
