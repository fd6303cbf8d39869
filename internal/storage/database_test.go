package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wunderground-monitor/internal/fetch"
	"wunderground-monitor/internal/weather"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func conditions(temp float64) *weather.CurrentConditions {
	gust := "8.0"
	return &weather.CurrentConditions{
		Units:       weather.Imperial,
		Display:     weather.DisplayLocation{City: "Knoxville"},
		Current:     weather.Observation{StationID: "KTNKNOXV120", Weather: "Clear", Pressure: "29.98"},
		Wind:        weather.Wind{Direction: "WSW", Degrees: 250, Speed: 4.5, GustSpeed: &gust},
		Temperature: weather.Temperature{Temp: temp, Dewpoint: 66, FeelsLike: "91"},
	}
}

func TestObservations(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2016, 6, 21, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := db.SaveObservation("TN/Knoxville", conditions(80+float64(i)), base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := db.GetLatestObservation()
	if err != nil {
		t.Fatal(err)
	}
	if latest.Temperature != 82 || latest.City != "Knoxville" || latest.Units != "imperial" {
		t.Errorf("latest = %+v", latest)
	}
	if latest.WindGust == nil || *latest.WindGust != "8.0" || latest.HeatIndex != nil {
		t.Errorf("optional columns = %v %v", latest.WindGust, latest.HeatIndex)
	}

	limited, err := db.GetObservationsWithLimit(2)
	if err != nil || len(limited) != 2 || limited[0].Temperature != 82 {
		t.Errorf("limit: %+v, %v", limited, err)
	}

	ranged, err := db.GetObservationsByRange(base.Add(30*time.Minute), base.Add(3*time.Hour))
	if err != nil || len(ranged) != 2 {
		t.Errorf("range: %d, %v", len(ranged), err)
	}
}

func TestSaveAlertsReturnsOnlyNew(t *testing.T) {
	db := openTestDB(t)
	heat := weather.Alert{Type: "HEA", Date: "3:53 PM EDT on June 21, 2016", Expires: "8:00 PM EDT on June 22, 2016", Description: "Heat Advisory"}
	flood := weather.Alert{Type: "FLO", Date: "4:00 PM EDT on June 21, 2016", Expires: "6:00 AM EDT on June 22, 2016", Description: "Flood Warning"}

	first := time.Now().Add(-time.Hour)
	fresh, err := db.SaveAlerts("TN/Knoxville", []weather.Alert{heat}, first)
	if err != nil || len(fresh) != 1 {
		t.Fatalf("first save: %v, %v", fresh, err)
	}

	second := time.Now()
	fresh, err = db.SaveAlerts("TN/Knoxville", []weather.Alert{heat, flood}, second)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 1 || fresh[0].Type != "FLO" {
		t.Fatalf("second save returned %+v", fresh)
	}

	all, err := db.GetAlertsWithLimit(10)
	if err != nil || len(all) != 2 {
		t.Fatalf("stored alerts: %d, %v", len(all), err)
	}

	active, err := db.GetActiveAlerts(second.Add(-time.Second))
	if err != nil || len(active) != 2 {
		t.Fatalf("active: %d, %v", len(active), err)
	}
	for _, a := range active {
		if a.Type == "HEA" && !a.FirstSeen.Before(a.LastSeen) {
			t.Errorf("heat advisory last seen was not refreshed: %+v", a)
		}
	}
}

func TestFetchRecords(t *testing.T) {
	db := openTestDB(t)
	start := time.Now()

	outcomes := []fetch.Outcome{
		{RequestID: "a", URL: "http://x/conditions", Kind: fetch.KindSuccess, StatusCode: 200, StartedAt: start, Duration: 100 * time.Millisecond},
		{RequestID: "b", URL: "http://x/alerts", Kind: fetch.KindHTTP, StatusCode: 500, Err: &fetch.HTTPStatusError{Code: 500}, StartedAt: start.Add(time.Second), Duration: 300 * time.Millisecond},
		{RequestID: "c", URL: "http://x/alerts", Kind: fetch.KindTransport, Err: errors.New("refused"), StartedAt: start.Add(2 * time.Second)},
	}
	for _, o := range outcomes {
		if err := db.SaveFetch(o); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := db.GetRecentFetches(2)
	if err != nil || len(recent) != 2 {
		t.Fatalf("recent: %d, %v", len(recent), err)
	}
	if recent[0].RequestID != "c" || recent[0].Error != "refused" {
		t.Errorf("most recent = %+v", recent[0])
	}

	stats, err := db.GetFetchStats(start.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.ByKind[fetch.KindHTTP] != 1 || stats.ByKind[fetch.KindSuccess] != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgMS < 100 || stats.AvgMS > 200 {
		t.Errorf("average duration = %v", stats.AvgMS)
	}
}

func TestFetchStatsReportsQueryErrors(t *testing.T) {
	db := openTestDB(t)
	start := time.Now()
	if err := db.SaveFetch(fetch.Outcome{RequestID: "a", Kind: fetch.KindSuccess, StartedAt: start, Duration: time.Second}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if avg, err := db.averageDuration(start.Add(-time.Minute)); err == nil {
		t.Errorf("average on a closed database = %v, want error", avg)
	}
	if stats, err := db.GetFetchStats(start.Add(-time.Minute)); err == nil {
		t.Errorf("stats on a closed database = %+v, want error", stats)
	}
}

func TestCleanOldRecords(t *testing.T) {
	db := openTestDB(t)
	old := time.Now().Add(-48 * time.Hour)

	db.SaveObservation("TN/Knoxville", conditions(70), old)
	db.SaveObservation("TN/Knoxville", conditions(71), time.Now())
	db.SaveFetch(fetch.Outcome{RequestID: "old", Kind: fetch.KindSuccess, StartedAt: old})
	alert := weather.Alert{Type: "HEA", Date: "d", Expires: "e"}
	db.SaveAlerts("TN/Knoxville", []weather.Alert{alert}, old)

	if err := db.CleanOldRecords(24 * time.Hour); err != nil {
		t.Fatal(err)
	}

	obs, _ := db.GetObservationsWithLimit(10)
	if len(obs) != 1 || obs[0].Temperature != 71 {
		t.Errorf("observations after clean = %+v", obs)
	}
	if fetches, _ := db.GetRecentFetches(10); len(fetches) != 0 {
		t.Errorf("fetches after clean = %d", len(fetches))
	}

	// A cleaned alert that is reported again counts as new.
	fresh, err := db.SaveAlerts("TN/Knoxville", []weather.Alert{alert}, time.Now())
	if err != nil || len(fresh) != 1 {
		t.Errorf("re-reported alert: %v, %v", fresh, err)
	}
}
