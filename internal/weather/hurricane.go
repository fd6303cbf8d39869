package weather

import "wunderground-monitor/internal/jsonpath"

var hurricanePath = []string{"currenthurricane"}

type StormInfo struct {
	Name     string `json:"name"`
	NameNice string `json:"name_nice"`
	Number   string `json:"number"`
}

type StormPosition struct {
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	SaffirSimpsonCategory float64 `json:"saffir_simpson_category"`
	Category              string  `json:"category"`
}

// HurricaneState pairs a storm's identity with its latest position.
type HurricaneState struct {
	Info    StormInfo     `json:"info"`
	Current StormPosition `json:"current"`
}

func DecodeStormInfo(doc any, opts DecodeOptions) ([]StormInfo, error) {
	return decodeList("storm info", doc, opts, hurricanePath, readStormInfo)
}

func readStormInfo(item jsonpath.Node) StormInfo {
	info := item.Object("stormInfo")
	return StormInfo{
		Name:     info.String("stormName"),
		NameNice: info.String("stormName_Nice"),
		Number:   info.String("stormNumber"),
	}
}

func DecodeStormPositions(doc any, opts DecodeOptions) ([]StormPosition, error) {
	return decodeList("storm position", doc, opts, hurricanePath, readStormPosition)
}

func readStormPosition(item jsonpath.Node) StormPosition {
	cur := item.Object("Current")
	return StormPosition{
		Latitude:              cur.Float("lat"),
		Longitude:             cur.Float("lon"),
		SaffirSimpsonCategory: cur.Float("SaffirSimpsonCategory"),
		Category:              cur.String("Category"),
	}
}

func DecodeHurricanes(doc any, opts DecodeOptions) ([]HurricaneState, error) {
	return decodeList("hurricanes", doc, opts, hurricanePath, func(item jsonpath.Node) HurricaneState {
		return HurricaneState{Info: readStormInfo(item), Current: readStormPosition(item)}
	})
}
