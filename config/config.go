package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Wunderground WunderConfig    `mapstructure:"wunderground"`
	HTTP         HTTPConfig      `mapstructure:"http"`
	Decoder      DecoderConfig   `mapstructure:"decoder"`
	Search       SearchConfig    `mapstructure:"search"`
	Collector    CollectorConfig `mapstructure:"collector"`
	API          APIConfig       `mapstructure:"api"`
	MQTT         MQTTConfig      `mapstructure:"mqtt"`
	Database     DatabaseConfig  `mapstructure:"database"`
}

type WunderConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Query           string `mapstructure:"query"`
	Units           string `mapstructure:"units"`
	BaseURL         string `mapstructure:"base_url"`
	AutocompleteURL string `mapstructure:"autocomplete_url"`
}

type HTTPConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ResourceTimeout time.Duration `mapstructure:"resource_timeout"`
	// RateLimit is in requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

type DecoderConfig struct {
	LenientArrays  bool `mapstructure:"lenient_arrays"`
	HourlyMinItems int  `mapstructure:"hourly_min_items"`
}

type SearchConfig struct {
	// Policy is "placeholder" or "propagate".
	Policy string `mapstructure:"policy"`
}

type CollectorConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Enabled   bool          `mapstructure:"enabled"`
	Retention time.Duration `mapstructure:"retention"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Discovery   bool   `mapstructure:"discovery"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wunderground.api_key", "")
	v.SetDefault("wunderground.query", "")
	v.SetDefault("wunderground.units", "imperial")
	v.SetDefault("wunderground.base_url", "http://api.wunderground.com/api")
	v.SetDefault("wunderground.autocomplete_url", "http://autocomplete.wunderground.com/aq")
	v.SetDefault("http.request_timeout", "15s")
	v.SetDefault("http.resource_timeout", "30s")
	// free developer key: 10 calls per minute
	v.SetDefault("http.rate_limit", 10.0/60.0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("decoder.lenient_arrays", false)
	v.SetDefault("decoder.hourly_min_items", 0)
	v.SetDefault("search.policy", "placeholder")
	v.SetDefault("collector.interval", "10m")
	v.SetDefault("collector.enabled", true)
	v.SetDefault("collector.retention", "720h")
	v.SetDefault("api.port", 8045)
	v.SetDefault("api.enabled", true)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "wunderground")
	v.SetDefault("mqtt.client_id", "wunderground-monitor")
	v.SetDefault("mqtt.discovery", true)
	v.SetDefault("database.path", "./wunderground.db")
}

// Load reads configuration into the global viper instance so that later
// calls to SaveLocation write back to the same file.
func Load(configPath string) (*Config, error) {
	return load(viper.GetViper(), configPath)
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/wunderground-monitor")
	}

	v.SetEnvPrefix("WUNDERGROUND_MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveLocation persists the location query and unit system to configPath,
// falling back to the file Load read and then to config.yaml.
func SaveLocation(configPath, query, units string) error {
	return saveLocation(viper.GetViper(), configPath, query, units)
}

func saveLocation(v *viper.Viper, configPath, query, units string) error {
	if configPath == "" {
		configPath = v.ConfigFileUsed()
	}
	if configPath == "" {
		configPath = "config.yaml"
	}
	v.SetConfigFile(configPath)
	v.Set("wunderground.query", query)
	v.Set("wunderground.units", units)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("write config %s: %w", configPath, err)
	}
	return nil
}
