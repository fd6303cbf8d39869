package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"wunderground-monitor/internal/weather"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
	discovery   bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
	// Discovery announces Home Assistant sensors for each station.
	Discovery bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	p := newPublisher(client, cfg.TopicPrefix)
	p.discovery = cfg.Discovery
	return p, nil
}

func newPublisher(client mqtt.Client, prefix string) *Publisher {
	return &Publisher{
		client:      client,
		topicPrefix: prefix,
		enabled:     true,
		discovery:   true,
	}
}

// StationSlug turns a station id into a topic segment.
func StationSlug(station string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, strings.TrimSpace(station))
	if slug == "" {
		return "unknown"
	}
	return slug
}

func (p *Publisher) topic(parts ...string) string {
	return p.topicPrefix + "/" + strings.Join(parts, "/")
}

func (p *Publisher) send(topic string, retained bool, payload interface{}) error {
	token := p.client.Publish(topic, 0, retained, payload)
	token.Wait()
	return token.Error()
}

// PublishConditions publishes one topic per value plus the whole model as a
// retained status document.
func (p *Publisher) PublishConditions(c *weather.CurrentConditions) error {
	if !p.enabled {
		return nil
	}
	station := StationSlug(c.Current.StationID)

	topics := map[string]interface{}{
		"temperature":    c.Temperature.Temp,
		"dewpoint":       c.Temperature.Dewpoint,
		"feels_like":     c.Temperature.FeelsLike,
		"humidity":       strings.TrimSuffix(c.Current.Humidity, "%"),
		"pressure":       c.Current.Pressure,
		"pressure_trend": c.Current.PressureTrend,
		"visibility":     c.Current.Visibility,
		"uv":             c.Current.UV,
		"weather":        c.Current.Weather,
		"wind_speed":     c.Wind.Speed,
		"wind_direction": c.Wind.Direction,
		"wind_degrees":   c.Wind.Degrees,
		"wind_chill":     c.Wind.Chill,
	}
	if c.Wind.GustSpeed != nil {
		topics["wind_gust"] = *c.Wind.GustSpeed
	}
	if c.Temperature.HeatIndex != nil {
		topics["heat_index"] = *c.Temperature.HeatIndex
	}

	for name, value := range topics {
		topic := p.topic(station, name)
		if err := p.send(topic, false, fmt.Sprintf("%v", value)); err != nil {
			log.Printf("Failed to publish to %s: %v", topic, err)
		}
	}

	statusJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := p.send(p.topic(station, "status"), true, statusJSON); err != nil {
		return fmt.Errorf("failed to publish status: %w", err)
	}

	return nil
}

// PublishAlerts replaces the retained alert list. An empty list clears it.
func (p *Publisher) PublishAlerts(alerts []weather.Alert) error {
	if !p.enabled {
		return nil
	}
	if alerts == nil {
		alerts = []weather.Alert{}
	}
	payload, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}
	if err := p.send(p.topic("alerts"), true, payload); err != nil {
		return fmt.Errorf("failed to publish alerts: %w", err)
	}
	return nil
}

func (p *Publisher) PublishHurricanes(storms []weather.HurricaneState) error {
	if !p.enabled {
		return nil
	}
	if storms == nil {
		storms = []weather.HurricaneState{}
	}
	payload, err := json.Marshal(storms)
	if err != nil {
		return fmt.Errorf("failed to marshal hurricanes: %w", err)
	}
	if err := p.send(p.topic("hurricanes"), true, payload); err != nil {
		return fmt.Errorf("failed to publish hurricanes: %w", err)
	}
	return nil
}

func (p *Publisher) PublishHomeAssistantDiscovery(station string, u weather.Units) error {
	if !p.enabled || !p.discovery {
		return nil
	}
	slug := StationSlug(station)

	sensors := []struct {
		Name        string
		ID          string
		Unit        string
		DeviceClass string
	}{
		{"Temperature", "temperature", u.Pick("°F", "°C"), "temperature"},
		{"Dewpoint", "dewpoint", u.Pick("°F", "°C"), "temperature"},
		{"Humidity", "humidity", "%", "humidity"},
		{"Pressure", "pressure", u.Pick("inHg", "hPa"), "pressure"},
		{"Wind Speed", "wind_speed", u.Pick("mph", "km/h"), "wind_speed"},
		{"Wind Direction", "wind_degrees", "°", ""},
		{"Visibility", "visibility", u.Pick("mi", "km"), "distance"},
		{"UV Index", "uv", "", ""},
	}

	for _, sensor := range sensors {
		discoveryTopic := fmt.Sprintf("homeassistant/sensor/wunderground_%s/%s/config", slug, sensor.ID)

		config := map[string]interface{}{
			"name":        fmt.Sprintf("Weather %s", sensor.Name),
			"unique_id":   fmt.Sprintf("wunderground_%s_%s", slug, sensor.ID),
			"state_topic": p.topic(slug, sensor.ID),
			"device": map[string]interface{}{
				"identifiers":  []string{"wunderground_" + slug},
				"name":         "Weather Underground " + station,
				"manufacturer": "Weather Underground",
				"model":        "PWS",
			},
		}
		if sensor.Unit != "" {
			config["unit_of_measurement"] = sensor.Unit
		}
		if sensor.DeviceClass != "" {
			config["device_class"] = sensor.DeviceClass
		}

		payload, _ := json.Marshal(config)
		if err := p.send(discoveryTopic, true, payload); err != nil {
			log.Printf("Failed to publish discovery for %s: %v", sensor.ID, err)
		}
	}

	return nil
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
