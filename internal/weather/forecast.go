package weather

import "wunderground-monitor/internal/jsonpath"

var (
	textForecastPath   = []string{"forecast", "txt_forecast", "forecastday"}
	simpleForecastPath = []string{"forecast", "simpleforecast", "forecastday"}
)

// ForecastText is one half-day narrative from the text forecast.
type ForecastText struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Pop   string `json:"pop"`
}

type ForecastDate struct {
	YDay         int    `json:"yday"`
	WeekdayShort string `json:"weekday_short"`
	Weekday      string `json:"weekday"`
}

type ForecastDetail struct {
	High       string  `json:"high"`
	Low        string  `json:"low"`
	Conditions string  `json:"conditions"`
	Icon       string  `json:"icon"`
	Pop        float64 `json:"pop"`
	Humidity   float64 `json:"humidity"`
}

// ForecastPrecip holds liquid (in or mm) and snow (in or cm) amounts.
type ForecastPrecip struct {
	QPFAllDay  float64  `json:"qpf_allday"`
	QPFDay     *float64 `json:"qpf_day,omitempty"`
	QPFNight   *float64 `json:"qpf_night,omitempty"`
	SnowAllDay float64  `json:"snow_allday"`
	SnowDay    *float64 `json:"snow_day,omitempty"`
	SnowNight  *float64 `json:"snow_night,omitempty"`
}

type ForecastWind struct {
	MaxSpeed float64 `json:"max_speed"`
	MaxDir   string  `json:"max_dir"`
	MaxDeg   float64 `json:"max_degrees"`
	AvgSpeed float64 `json:"avg_speed"`
	AvgDir   string  `json:"avg_dir"`
	AvgDeg   float64 `json:"avg_degrees"`
}

// Forecast is the decoded 10 day outlook.
type Forecast struct {
	Units   Units            `json:"units"`
	Text    []ForecastText   `json:"text"`
	Dates   []ForecastDate   `json:"dates"`
	Details []ForecastDetail `json:"details"`
	Precip  []ForecastPrecip `json:"precip"`
	Wind    []ForecastWind   `json:"wind"`
}

func DecodeForecastText(doc any, u Units, opts DecodeOptions) ([]ForecastText, error) {
	textKey := u.Pick("fcttext", "fcttext_metric")
	return decodeList("forecast text", doc, opts, textForecastPath, func(item jsonpath.Node) ForecastText {
		return ForecastText{
			Icon:  item.String("icon"),
			Title: item.String("title"),
			Text:  item.String(textKey),
			Pop:   item.String("pop"),
		}
	})
}

func DecodeForecastDates(doc any, opts DecodeOptions) ([]ForecastDate, error) {
	return decodeList("forecast date", doc, opts, simpleForecastPath, func(item jsonpath.Node) ForecastDate {
		date := item.Object("date")
		return ForecastDate{
			YDay:         date.Int("yday"),
			WeekdayShort: date.String("weekday_short"),
			Weekday:      date.String("weekday"),
		}
	})
}

func DecodeForecastDetails(doc any, u Units, opts DecodeOptions) ([]ForecastDetail, error) {
	key := u.Pick("fahrenheit", "celsius")
	return decodeList("forecast detail", doc, opts, simpleForecastPath, func(item jsonpath.Node) ForecastDetail {
		return ForecastDetail{
			High:       item.String("high", key),
			Low:        item.String("low", key),
			Conditions: item.String("conditions"),
			Icon:       item.String("icon"),
			Pop:        item.Float("pop"),
			Humidity:   item.Float("avehumidity"),
		}
	})
}

func DecodeForecastPrecip(doc any, u Units, opts DecodeOptions) ([]ForecastPrecip, error) {
	rain := u.Pick("in", "mm")
	snow := u.Pick("in", "cm")
	return decodeList("forecast precip", doc, opts, simpleForecastPath, func(item jsonpath.Node) ForecastPrecip {
		return ForecastPrecip{
			QPFAllDay:  item.Float("qpf_allday", rain),
			QPFDay:     item.OptFloat("qpf_day", rain),
			QPFNight:   item.OptFloat("qpf_night", rain),
			SnowAllDay: item.Float("snow_allday", snow),
			SnowDay:    item.OptFloat("snow_day", snow),
			SnowNight:  item.OptFloat("snow_night", snow),
		}
	})
}

func DecodeForecastWind(doc any, u Units, opts DecodeOptions) ([]ForecastWind, error) {
	key := u.Pick("mph", "kph")
	return decodeList("forecast wind", doc, opts, simpleForecastPath, func(item jsonpath.Node) ForecastWind {
		maxWind := item.Object("maxwind")
		avgWind := item.Object("avewind")
		return ForecastWind{
			MaxSpeed: maxWind.Float(key),
			MaxDir:   maxWind.String("dir"),
			MaxDeg:   maxWind.Float("degrees"),
			AvgSpeed: avgWind.Float(key),
			AvgDir:   avgWind.String("dir"),
			AvgDeg:   avgWind.Float("degrees"),
		}
	})
}

// DecodeForecast decodes every forecast variant and fails if any of them does.
func DecodeForecast(doc any, u Units, opts DecodeOptions) (*Forecast, error) {
	text, err := DecodeForecastText(doc, u, opts)
	if err != nil {
		return nil, err
	}
	dates, err := DecodeForecastDates(doc, opts)
	if err != nil {
		return nil, err
	}
	details, err := DecodeForecastDetails(doc, u, opts)
	if err != nil {
		return nil, err
	}
	precip, err := DecodeForecastPrecip(doc, u, opts)
	if err != nil {
		return nil, err
	}
	wind, err := DecodeForecastWind(doc, u, opts)
	if err != nil {
		return nil, err
	}

	return &Forecast{
		Units:   u,
		Text:    text,
		Dates:   dates,
		Details: details,
		Precip:  precip,
		Wind:    wind,
	}, nil
}
