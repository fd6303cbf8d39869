package weather

import "wunderground-monitor/internal/jsonpath"

const observationKey = "current_observation"

type DisplayLocation struct {
	Full      string `json:"full"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Elevation string `json:"elevation"`
}

type ObservationLocation struct {
	Full      string `json:"full"`
	City      string `json:"city"`
	State     string `json:"state"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Elevation string `json:"elevation"`
}

type ObservationTime struct {
	ObservationTime string `json:"observation_time"`
	TimezoneShort   string `json:"timezone_short"`
	TimezoneLong    string `json:"timezone_long"`
}

// Observation is the station summary of a conditions response.
type Observation struct {
	StationID     string `json:"station_id"`
	Weather       string `json:"weather"`
	Humidity      string `json:"humidity"`
	Pressure      string `json:"pressure"`
	PressureTrend string `json:"pressure_trend"`
	Visibility    string `json:"visibility"`
	UV            string `json:"uv"`
	Icon          string `json:"icon"`
}

type Wind struct {
	Direction string  `json:"direction"`
	Degrees   float64 `json:"degrees"`
	Speed     float64 `json:"speed"`
	GustSpeed *string `json:"gust_speed,omitempty"`
	Chill     string  `json:"chill"`
}

type Temperature struct {
	Temp      float64  `json:"temp"`
	Dewpoint  float64  `json:"dewpoint"`
	HeatIndex *float64 `json:"heat_index,omitempty"`
	FeelsLike string   `json:"feels_like"`
}

// CurrentConditions is the full conditions response.
type CurrentConditions struct {
	Units       Units               `json:"units"`
	Display     DisplayLocation     `json:"display_location"`
	Observation ObservationLocation `json:"observation_location"`
	Time        ObservationTime     `json:"time"`
	Current     Observation         `json:"current"`
	Wind        Wind                `json:"wind"`
	Temperature Temperature         `json:"temperature"`
}

func DecodeDisplayLocation(doc any) (DisplayLocation, error) {
	return decodeOne("display location", doc, readDisplayLocation)
}

func readDisplayLocation(root jsonpath.Node) DisplayLocation {
	d := root.Object(observationKey, "display_location")
	return DisplayLocation{
		Full:      d.String("full"),
		City:      d.String("city"),
		State:     d.String("state"),
		Zip:       d.String("zip"),
		Latitude:  d.String("latitude"),
		Longitude: d.String("longitude"),
		Elevation: d.String("elevation"),
	}
}

func DecodeObservationLocation(doc any) (ObservationLocation, error) {
	return decodeOne("observation location", doc, readObservationLocation)
}

func readObservationLocation(root jsonpath.Node) ObservationLocation {
	o := root.Object(observationKey, "observation_location")
	return ObservationLocation{
		Full:      o.String("full"),
		City:      o.String("city"),
		State:     o.String("state"),
		Latitude:  o.String("latitude"),
		Longitude: o.String("longitude"),
		Elevation: o.String("elevation"),
	}
}

func DecodeObservationTime(doc any) (ObservationTime, error) {
	return decodeOne("observation time", doc, readObservationTime)
}

func readObservationTime(root jsonpath.Node) ObservationTime {
	o := root.Object(observationKey)
	return ObservationTime{
		ObservationTime: o.String("observation_time"),
		TimezoneShort:   o.String("local_tz_short"),
		TimezoneLong:    o.String("local_tz_long"),
	}
}

func DecodeObservation(doc any, u Units) (Observation, error) {
	return decodeOne("observation", doc, func(root jsonpath.Node) Observation {
		return readObservation(root, u)
	})
}

func readObservation(root jsonpath.Node, u Units) Observation {
	o := root.Object(observationKey)
	return Observation{
		StationID:     o.String("station_id"),
		Weather:       o.String("weather"),
		Humidity:      o.String("relative_humidity"),
		Pressure:      o.String(u.Pick("pressure_in", "pressure_mb")),
		PressureTrend: o.String("pressure_trend"),
		Visibility:    o.String(u.Pick("visibility_mi", "visibility_km")),
		UV:            o.String("UV"),
		Icon:          o.String("icon"),
	}
}

func DecodeWind(doc any, u Units) (Wind, error) {
	return decodeOne("wind", doc, func(root jsonpath.Node) Wind {
		return readWind(root, u)
	})
}

func readWind(root jsonpath.Node, u Units) Wind {
	o := root.Object(observationKey)
	return Wind{
		Direction: o.String("wind_dir"),
		Degrees:   o.Float("wind_degrees"),
		Speed:     o.Float(u.Pick("wind_mph", "wind_kph")),
		GustSpeed: o.OptString(u.Pick("wind_gust_mph", "wind_gust_kph")),
		Chill:     o.String(u.Pick("windchill_f", "windchill_c")),
	}
}

func DecodeTemperature(doc any, u Units) (Temperature, error) {
	return decodeOne("temperature", doc, func(root jsonpath.Node) Temperature {
		return readTemperature(root, u)
	})
}

func readTemperature(root jsonpath.Node, u Units) Temperature {
	o := root.Object(observationKey)
	return Temperature{
		Temp:      o.Float(u.Pick("temp_f", "temp_c")),
		Dewpoint:  o.Float(u.Pick("dewpoint_f", "dewpoint_c")),
		HeatIndex: o.OptFloat(u.Pick("heat_index_f", "heat_index_c")),
		FeelsLike: o.String(u.Pick("feelslike_f", "feelslike_c")),
	}
}

// DecodeConditions builds every part of a conditions response or nothing.
func DecodeConditions(doc any, u Units) (*CurrentConditions, error) {
	return decodeOne("conditions", doc, func(root jsonpath.Node) *CurrentConditions {
		return &CurrentConditions{
			Units:       u,
			Display:     readDisplayLocation(root),
			Observation: readObservationLocation(root),
			Time:        readObservationTime(root),
			Current:     readObservation(root, u),
			Wind:        readWind(root, u),
			Temperature: readTemperature(root, u),
		}
	})
}
