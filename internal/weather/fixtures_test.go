package weather

import (
	"fmt"
	"strings"
	"testing"

	"wunderground-monitor/internal/jsonpath"
)

const autocompleteJSON = `{
	"RESULTS": [
		{"name": "Knoxville, TN", "type": "city", "c": "US", "zmw": "37901.1.99999", "tz": "America/New_York", "tzs": "EST", "l": "/q/zmw:37901.1.99999", "ll": "35.96 -83.92", "lat": "35.96", "lon": "-83.92"}
	]
}`

const conditionsJSON = `{
	"current_observation": {
		"display_location": {
			"full": "Knoxville, TN", "city": "Knoxville", "state": "TN", "zip": "37902",
			"latitude": "35.96", "longitude": "-83.92", "elevation": "270.0"
		},
		"observation_location": {
			"full": "Downtown, Knoxville, Tennessee", "city": "Downtown, Knoxville", "state": "Tennessee",
			"latitude": "35.963", "longitude": "-83.917", "elevation": "919 ft"
		},
		"station_id": "KTNKNOXV120",
		"observation_time": "Last Updated on June 21, 2:53 PM EDT",
		"local_tz_short": "EDT",
		"local_tz_long": "America/New_York",
		"weather": "Partly Cloudy",
		"temp_f": 88.1,
		"temp_c": 31.2,
		"relative_humidity": "48%",
		"wind_dir": "WSW",
		"wind_degrees": 250,
		"wind_mph": 4.5,
		"wind_gust_mph": "8.0",
		"wind_kph": 7.2,
		"wind_gust_kph": "12.9",
		"pressure_mb": "1015",
		"pressure_in": "29.98",
		"pressure_trend": "-",
		"dewpoint_f": 66,
		"dewpoint_c": 19,
		"heat_index_f": 91,
		"heat_index_c": 33,
		"windchill_f": "NA",
		"windchill_c": "NA",
		"feelslike_f": "91",
		"feelslike_c": "33",
		"visibility_mi": "10.0",
		"visibility_km": "16.1",
		"UV": "8",
		"icon": "partlycloudy"
	}
}`

const almanacJSON = `{
	"almanac": {
		"airport_code": "KTYS",
		"temp_high": {"normal": {"F": "87", "C": "30"}, "record": {"F": "100", "C": "37"}, "recordyear": "1988"},
		"temp_low": {"normal": {"F": "66", "C": "18"}, "record": {"F": "51", "C": "10"}, "recordyear": "1992"}
	}
}`

const astronomyJSON = `{
	"moon_phase": {
		"percentIlluminated": "98",
		"ageOfMoon": "16",
		"phaseofMoon": "Full",
		"hemisphere": "North",
		"current_time": {"hour": "14", "minute": "53"}
	},
	"sun_phase": {
		"sunrise": {"hour": "6", "minute": "18"},
		"sunset": {"hour": "20", "minute": "52"}
	}
}`

func forecastDayJSON(period int, yday int) string {
	return fmt.Sprintf(`{
		"date": {"epoch": "1466550000", "yday": %d, "weekday_short": "Tue", "weekday": "Tuesday"},
		"period": %d,
		"high": {"fahrenheit": "91", "celsius": "33"},
		"low": {"fahrenheit": "70", "celsius": "21"},
		"conditions": "Chance of a Thunderstorm",
		"icon": "chancetstorms",
		"pop": 40,
		"qpf_allday": {"in": 0.12, "mm": 3},
		"qpf_day": {"in": 0.10, "mm": 3},
		"qpf_night": {"in": null, "mm": null},
		"snow_allday": {"in": 0.0, "cm": 0.0},
		"snow_day": {"in": 0.0, "cm": 0.0},
		"snow_night": {"in": 0.0, "cm": 0.0},
		"maxwind": {"mph": 10, "kph": 16, "dir": "West", "degrees": 270},
		"avewind": {"mph": 6, "kph": 10, "dir": "WSW", "degrees": 250},
		"avehumidity": 62
	}`, yday, period)
}

func forecastJSON(days int) string {
	var text, simple []string
	for i := 0; i < days; i++ {
		text = append(text, fmt.Sprintf(`{
			"period": %d, "icon": "chancetstorms", "title": "Tuesday",
			"fcttext": "Partly cloudy. High 91F.", "fcttext_metric": "Partly cloudy. High 33C.", "pop": "40"
		}`, i))
		simple = append(simple, forecastDayJSON(i+1, 172+i))
	}
	return fmt.Sprintf(`{
		"forecast": {
			"txt_forecast": {"date": "2:00 PM EDT", "forecastday": [%s]},
			"simpleforecast": {"forecastday": [%s]}
		}
	}`, strings.Join(text, ","), strings.Join(simple, ","))
}

func hourlyEntryJSON(i int) string {
	return fmt.Sprintf(`{
		"FCTTIME": {"hour": "%d", "yday": "172", "civil": "%d:00 PM", "pretty": "3:00 PM EDT on June 21, 2016"},
		"temp": {"english": "89", "metric": "32"},
		"dewpoint": {"english": "65", "metric": "18"},
		"condition": "Partly Cloudy",
		"wspd": {"english": "6", "metric": "10"},
		"wdir": {"dir": "WSW", "degrees": "250"},
		"humidity": "45",
		"pop": "10"
	}`, i%24, i%12+1)
}

func hourlyJSON(n int) string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = hourlyEntryJSON(i)
	}
	return fmt.Sprintf(`{"hourly_forecast": [%s]}`, strings.Join(entries, ","))
}

const hurricaneJSON = `{
	"currenthurricane": [
		{
			"stormInfo": {"stormName": "Blas", "stormName_Nice": "Hurricane Blas", "stormNumber": "ep201602"},
			"Current": {"lat": 16.2, "lon": -122.4, "SaffirSimpsonCategory": 2, "Category": "Hurricane"}
		},
		{
			"stormInfo": {"stormName": "Celia", "stormName_Nice": "Tropical Storm Celia", "stormNumber": "ep201603"},
			"Current": {"lat": 13.5, "lon": -115.1, "SaffirSimpsonCategory": 0, "Category": "Tropical Storm"}
		}
	]
}`

const alertsJSON = `{
	"alerts": [
		{
			"type": "HEA",
			"description": "Heat Advisory",
			"date": "3:53 PM EDT on June 21, 2016",
			"expires": "8:00 PM EDT on June 22, 2016",
			"message": "...Heat advisory remains in effect until 8 PM EDT Wednesday..."
		}
	]
}`

// parse decodes a fixture the same way the fetcher does.
func parse(t *testing.T, doc string) any {
	t.Helper()
	v, err := jsonpath.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("fixture does not parse: %v", err)
	}
	return v
}

// without returns a copy of doc with the key at path removed.
func without(t *testing.T, doc string, path ...string) any {
	t.Helper()
	root := parse(t, doc)
	cur := root
	for i, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			if i == len(path)-1 {
				if _, ok := node[key]; !ok {
					t.Fatalf("fixture has no key %s", strings.Join(path, "."))
				}
				delete(node, key)
				return root
			}
			cur = node[key]
		case []any:
			var idx int
			fmt.Sscanf(key, "%d", &idx)
			cur = node[idx]
		default:
			t.Fatalf("cannot walk into %T at %s", cur, key)
		}
	}
	return root
}
