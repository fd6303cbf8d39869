package weather

import "wunderground-monitor/internal/jsonpath"

// Location is one autocomplete candidate.
type Location struct {
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// DecodeLocations reads the RESULTS array of an autocomplete response.
func DecodeLocations(doc any, opts DecodeOptions) ([]Location, error) {
	return decodeList("locations", doc, opts, []string{"RESULTS"}, func(item jsonpath.Node) Location {
		return Location{
			Name:      item.String("name"),
			Timezone:  item.String("tzs"),
			Latitude:  item.String("lat"),
			Longitude: item.String("lon"),
		}
	})
}
