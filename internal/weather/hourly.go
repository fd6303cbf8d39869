package weather

import "wunderground-monitor/internal/jsonpath"

var hourlyPath = []string{"hourly_forecast"}

// HourlySlot is one forecast hour. The API sends every value as a string.
type HourlySlot struct {
	YDay     string `json:"yday"`
	Civil    string `json:"civil"`
	Temp     string `json:"temp"`
	Humidity string `json:"humidity"`
	Pop      string `json:"pop"`
}

type HourlyWind struct {
	Speed     string `json:"speed"`
	Direction string `json:"direction"`
	Degrees   string `json:"degrees"`
}

func DecodeHourly(doc any, u Units, opts DecodeOptions) ([]HourlySlot, error) {
	key := u.Pick("english", "metric")
	return decodeList("hourly forecast", doc, opts, hourlyPath, func(item jsonpath.Node) HourlySlot {
		fct := item.Object("FCTTIME")
		return HourlySlot{
			YDay:     fct.String("yday"),
			Civil:    fct.String("civil"),
			Temp:     item.String("temp", key),
			Humidity: item.String("humidity"),
			Pop:      item.String("pop"),
		}
	})
}

func DecodeHourlyWind(doc any, u Units, opts DecodeOptions) ([]HourlyWind, error) {
	key := u.Pick("english", "metric")
	return decodeList("hourly wind", doc, opts, hourlyPath, func(item jsonpath.Node) HourlyWind {
		return HourlyWind{
			Speed:     item.String("wspd", key),
			Direction: item.String("wdir", "dir"),
			Degrees:   item.String("wdir", "degrees"),
		}
	})
}
