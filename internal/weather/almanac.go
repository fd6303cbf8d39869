package weather

import "wunderground-monitor/internal/jsonpath"

// Almanac holds historical temperatures for the nearest airport. Values are
// in the unit selected at decode time.
type Almanac struct {
	Units          Units  `json:"units"`
	AirportCode    string `json:"airport_code"`
	NormalHigh     string `json:"normal_high"`
	RecordHigh     string `json:"record_high"`
	RecordYearHigh string `json:"record_year_high"`
	NormalLow      string `json:"normal_low"`
	RecordLow      string `json:"record_low"`
	RecordYearLow  string `json:"record_year_low"`
}

func DecodeAlmanac(doc any, u Units) (Almanac, error) {
	key := u.Pick("F", "C")
	return decodeOne("almanac", doc, func(root jsonpath.Node) Almanac {
		a := root.Object("almanac")
		high := a.Object("temp_high")
		low := a.Object("temp_low")
		return Almanac{
			Units:          u,
			AirportCode:    a.String("airport_code"),
			NormalHigh:     high.String("normal", key),
			RecordHigh:     high.String("record", key),
			RecordYearHigh: high.String("recordyear"),
			NormalLow:      low.String("normal", key),
			RecordLow:      low.String("record", key),
			RecordYearLow:  low.String("recordyear"),
		}
	})
}
