package weather

import (
	"fmt"
	"strings"
)

// Units selects which JSON key is read for a physical quantity.
type Units int

const (
	Imperial Units = iota
	Metric
)

func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "imperial", "english", "us", "f":
		return Imperial, nil
	case "metric", "si", "c":
		return Metric, nil
	default:
		return Imperial, fmt.Errorf("unknown unit system %q", s)
	}
}

func (u Units) String() string {
	if u == Metric {
		return "metric"
	}
	return "imperial"
}

// Pick returns imperial or metric depending on u.
func (u Units) Pick(imperial, metric string) string {
	if u == Metric {
		return metric
	}
	return imperial
}

func (u Units) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Units) UnmarshalText(text []byte) error {
	parsed, err := ParseUnits(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ArrayPolicy controls what happens when one element of a list fails to decode.
type ArrayPolicy int

const (
	// FailFast rejects the whole list on the first bad element.
	FailFast ArrayPolicy = iota
	// Lenient drops bad elements and keeps the rest.
	Lenient
)

// DecodeOptions configures list decoders.
type DecodeOptions struct {
	Policy ArrayPolicy
	// MinItems rejects lists shorter than this once decoded. Zero accepts any
	// non-empty list.
	MinItems int
}

func DefaultOptions() DecodeOptions {
	return DecodeOptions{Policy: FailFast}
}
