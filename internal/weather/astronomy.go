package weather

import "wunderground-monitor/internal/jsonpath"

type Moon struct {
	PercentIlluminated string `json:"percent_illuminated"`
	Age                string `json:"age"`
	Phase              string `json:"phase"`
	Hemisphere         string `json:"hemisphere"`
}

type Sun struct {
	RiseHour   string `json:"rise_hour"`
	RiseMinute string `json:"rise_minute"`
	SetHour    string `json:"set_hour"`
	SetMinute  string `json:"set_minute"`
}

type Astronomy struct {
	Moon Moon `json:"moon"`
	Sun  Sun  `json:"sun"`
}

func DecodeMoon(doc any) (Moon, error) {
	return decodeOne("moon", doc, readMoon)
}

func readMoon(root jsonpath.Node) Moon {
	m := root.Object("moon_phase")
	return Moon{
		PercentIlluminated: m.String("percentIlluminated"),
		Age:                m.String("ageOfMoon"),
		Phase:              m.String("phaseofMoon"),
		Hemisphere:         m.String("hemisphere"),
	}
}

func DecodeSun(doc any) (Sun, error) {
	return decodeOne("sun", doc, readSun)
}

func readSun(root jsonpath.Node) Sun {
	s := root.Object("sun_phase")
	return Sun{
		RiseHour:   s.String("sunrise", "hour"),
		RiseMinute: s.String("sunrise", "minute"),
		SetHour:    s.String("sunset", "hour"),
		SetMinute:  s.String("sunset", "minute"),
	}
}

// DecodeAstronomy requires both the moon and sun sections.
func DecodeAstronomy(doc any) (Astronomy, error) {
	return decodeOne("astronomy", doc, func(root jsonpath.Node) Astronomy {
		return Astronomy{Moon: readMoon(root), Sun: readSun(root)}
	})
}
