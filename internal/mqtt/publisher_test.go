package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"wunderground-monitor/internal/weather"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	retained bool
	payload  string
}

// recordingClient keeps the last message per topic.
type recordingClient struct {
	mqtt.Client
	mu       sync.Mutex
	messages map[string]message
}

func newRecordingClient() *recordingClient {
	return &recordingClient{messages: map[string]message{}}
}

func (c *recordingClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	var body string
	switch v := payload.(type) {
	case string:
		body = v
	case []byte:
		body = string(v)
	}
	c.messages[topic] = message{retained: retained, payload: body}
	return doneToken{}
}

func (c *recordingClient) get(t *testing.T, topic string) message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.messages[topic]
	if !ok {
		t.Fatalf("nothing published to %s", topic)
	}
	return m
}

func sampleConditions() *weather.CurrentConditions {
	heat := 91.0
	return &weather.CurrentConditions{
		Display:     weather.DisplayLocation{City: "Knoxville"},
		Current:     weather.Observation{StationID: "KTNKNOXV120", Humidity: "48%", Pressure: "29.98"},
		Wind:        weather.Wind{Direction: "WSW", Degrees: 250, Speed: 4.5, Chill: "NA"},
		Temperature: weather.Temperature{Temp: 88.1, Dewpoint: 66, HeatIndex: &heat, FeelsLike: "91"},
	}
}

func TestPublishConditions(t *testing.T) {
	client := newRecordingClient()
	p := newPublisher(client, "wx")

	if err := p.PublishConditions(sampleConditions()); err != nil {
		t.Fatal(err)
	}

	if m := client.get(t, "wx/ktnknoxv120/temperature"); m.payload != "88.1" || m.retained {
		t.Errorf("temperature = %+v", m)
	}
	if m := client.get(t, "wx/ktnknoxv120/humidity"); m.payload != "48" {
		t.Errorf("humidity = %q", m.payload)
	}
	if m := client.get(t, "wx/ktnknoxv120/heat_index"); m.payload != "91" {
		t.Errorf("heat index = %q", m.payload)
	}
	if _, ok := client.messages["wx/ktnknoxv120/wind_gust"]; ok {
		t.Error("absent gust should not be published")
	}

	status := client.get(t, "wx/ktnknoxv120/status")
	if !status.retained {
		t.Error("status should be retained")
	}
	var decoded weather.CurrentConditions
	if err := json.Unmarshal([]byte(status.payload), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Display.City != "Knoxville" {
		t.Errorf("status city = %q", decoded.Display.City)
	}
}

func TestPublishAlertsClearsWithEmptyList(t *testing.T) {
	client := newRecordingClient()
	p := newPublisher(client, "wx")

	if err := p.PublishAlerts([]weather.Alert{{Type: "HEA"}}); err != nil {
		t.Fatal(err)
	}
	if err := p.PublishAlerts(nil); err != nil {
		t.Fatal(err)
	}
	if m := client.get(t, "wx/alerts"); m.payload != "[]" || !m.retained {
		t.Errorf("alerts = %+v", m)
	}

	if err := p.PublishHurricanes([]weather.HurricaneState{{Info: weather.StormInfo{Name: "Blas"}}}); err != nil {
		t.Fatal(err)
	}
	var storms []weather.HurricaneState
	json.Unmarshal([]byte(client.get(t, "wx/hurricanes").payload), &storms)
	if len(storms) != 1 || storms[0].Info.Name != "Blas" {
		t.Errorf("hurricanes = %+v", storms)
	}
}

func TestDiscoveryUsesSelectedUnits(t *testing.T) {
	client := newRecordingClient()
	p := newPublisher(client, "wx")

	if err := p.PublishHomeAssistantDiscovery("KTNKNOXV120", weather.Metric); err != nil {
		t.Fatal(err)
	}

	m := client.get(t, "homeassistant/sensor/wunderground_ktnknoxv120/temperature/config")
	var cfg map[string]interface{}
	if err := json.Unmarshal([]byte(m.payload), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg["unit_of_measurement"] != "°C" || cfg["state_topic"] != "wx/ktnknoxv120/temperature" {
		t.Errorf("discovery config = %v", cfg)
	}
}

func TestDiscoveryCanBeTurnedOff(t *testing.T) {
	client := newRecordingClient()
	p := newPublisher(client, "wx")
	p.discovery = false

	if err := p.PublishHomeAssistantDiscovery("KTNKNOXV120", weather.Imperial); err != nil {
		t.Fatal(err)
	}
	if len(client.messages) != 0 {
		t.Errorf("published %d discovery messages", len(client.messages))
	}
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	p, err := NewPublisher(PublisherConfig{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.PublishConditions(sampleConditions()); err != nil {
		t.Error(err)
	}
	if p.IsConnected() {
		t.Error("disabled publisher reports connected")
	}
	p.Close()
}

func TestStationSlug(t *testing.T) {
	cases := map[string]string{"KTNKNOXV120": "ktnknoxv120", "pws:KNYC-1": "pws_knyc_1", "": "unknown"}
	for in, want := range cases {
		if got := StationSlug(in); got != want {
			t.Errorf("StationSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
