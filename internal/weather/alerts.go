package weather

import "wunderground-monitor/internal/jsonpath"

type Alert struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Expires     string `json:"expires"`
	Message     string `json:"message"`
}

func DecodeAlerts(doc any, opts DecodeOptions) ([]Alert, error) {
	return decodeList("alerts", doc, opts, []string{"alerts"}, func(item jsonpath.Node) Alert {
		return Alert{
			Type:        item.String("type"),
			Date:        item.String("date"),
			Description: item.String("description"),
			Expires:     item.String("expires"),
			Message:     item.String("message"),
		}
	})
}
