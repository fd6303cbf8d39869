package jsonpath

import (
	"errors"
	"strings"
	"testing"
)

const sample = `{
	"current_observation": {
		"display_location": {"city": "Knoxville", "elevation": "270.0"},
		"wind_mph": 4.5,
		"wind_degrees": 250,
		"heat_index_f": "NA",
		"temp_f": 71
	},
	"RESULTS": [
		{"name": "Knoxville, TN"},
		{"name": 7}
	]
}`

func mustParse(t *testing.T, doc string) any {
	t.Helper()
	v, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return v
}

func TestTypedLookups(t *testing.T) {
	root := Root(mustParse(t, sample))
	obs := root.Object("current_observation")

	if got := obs.String("display_location", "city"); got != "Knoxville" {
		t.Errorf("city = %q, want Knoxville", got)
	}
	if got := obs.Float("wind_mph"); got != 4.5 {
		t.Errorf("wind_mph = %v, want 4.5", got)
	}
	if got := obs.Int("wind_degrees"); got != 250 {
		t.Errorf("wind_degrees = %d, want 250", got)
	}
	if got := obs.Float("temp_f"); got != 71 {
		t.Errorf("temp_f = %v, want 71", got)
	}
	if err := root.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingKeyRecordsPath(t *testing.T) {
	root := Root(mustParse(t, sample))
	_ = root.String("current_observation", "display_location", "zip")

	var perr *PathError
	if !errors.As(root.Err(), &perr) {
		t.Fatalf("expected *PathError, got %v", root.Err())
	}
	if perr.Path != "current_observation.display_location.zip" {
		t.Errorf("path = %q", perr.Path)
	}
	if perr.Reason != "missing key" {
		t.Errorf("reason = %q", perr.Reason)
	}
}

func TestFirstErrorWins(t *testing.T) {
	root := Root(mustParse(t, sample))
	obs := root.Object("current_observation")
	_ = obs.Float("display_location", "city")
	_ = obs.String("nope")

	err := root.Err()
	if err == nil || !strings.Contains(err.Error(), "current_observation.display_location.city: expected number, got string") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStringIsNotCoercedToNumber(t *testing.T) {
	root := Root(mustParse(t, sample))
	_ = root.Float("current_observation", "display_location", "elevation")
	if root.Err() == nil {
		t.Fatal("expected error reading a string as number")
	}
}

func TestIntRejectsFraction(t *testing.T) {
	root := Root(mustParse(t, sample))
	_ = root.Int("current_observation", "wind_mph")
	if root.Err() == nil {
		t.Fatal("expected error reading 4.5 as integer")
	}
}

func TestOptionalsNeverFail(t *testing.T) {
	root := Root(mustParse(t, sample))
	obs := root.Object("current_observation")

	if got := obs.OptFloat("heat_index_f"); got != nil {
		t.Errorf("heat_index_f = %v, want nil for \"NA\"", *got)
	}
	if got := obs.OptString("wind_gust_mph"); got != nil {
		t.Errorf("wind_gust_mph = %v, want nil", *got)
	}
	if got := obs.OptFloat("wind_mph"); got == nil || *got != 4.5 {
		t.Errorf("wind_mph optional = %v", got)
	}
	if err := root.Err(); err != nil {
		t.Fatalf("optionals recorded an error: %v", err)
	}
}

func TestElementsHaveIndependentErrors(t *testing.T) {
	root := Root(mustParse(t, sample))
	items := root.Elements("RESULTS")
	if len(items) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(items))
	}

	if got := items[0].String("name"); got != "Knoxville, TN" {
		t.Errorf("name = %q", got)
	}
	_ = items[1].String("name")

	if items[0].Err() != nil {
		t.Errorf("element 0 error: %v", items[0].Err())
	}
	if items[1].Err() == nil || !strings.HasPrefix(items[1].Err().Error(), "RESULTS[1].name") {
		t.Errorf("element 1 error = %v", items[1].Err())
	}
	if root.Err() != nil {
		t.Errorf("root should be clean, got %v", root.Err())
	}
}

func TestElementsOnNonArray(t *testing.T) {
	root := Root(mustParse(t, sample))
	if items := root.Elements("current_observation"); items != nil {
		t.Fatalf("expected nil, got %d items", len(items))
	}
	if root.Err() == nil {
		t.Fatal("expected error for non-array")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, doc := range []string{`{"a":`, `<html></html>`, `{"a":1} {"b":2}`} {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestGoLiteralsAreAccepted(t *testing.T) {
	root := Root(map[string]any{"lat": 35.96, "yday": 172, "n": int64(3)})
	if root.Float("lat") != 35.96 || root.Int("yday") != 172 || root.Int("n") != 3 {
		t.Fatal("unexpected values")
	}
	if root.Err() != nil {
		t.Fatal(root.Err())
	}
}
