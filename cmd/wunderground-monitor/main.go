package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wunderground-monitor/config"
	"wunderground-monitor/internal/api"
	"wunderground-monitor/internal/collector"
	"wunderground-monitor/internal/fetch"
	"wunderground-monitor/internal/mqtt"
	"wunderground-monitor/internal/search"
	"wunderground-monitor/internal/storage"
	"wunderground-monitor/internal/weather"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wunderground-monitor",
		Short: "Weather Underground monitor",
		Long:  "A tool to read, store and publish Weather Underground conditions, forecasts and alerts",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decodeOptions(cfg *config.Config) weather.DecodeOptions {
	opts := weather.DecodeOptions{Policy: weather.FailFast}
	if cfg.Decoder.LenientArrays {
		opts.Policy = weather.Lenient
	}
	return opts
}

func newFetcher(cfg *config.Config, observer fetch.Observer) *fetch.Fetcher {
	return fetch.New(fetch.Config{
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		ResourceTimeout: cfg.HTTP.ResourceTimeout,
		RateLimit:       cfg.HTTP.RateLimit,
		Burst:           cfg.HTTP.Burst,
		Observer:        observer,
	})
}

func newClient(cfg *config.Config, units weather.Units, f *fetch.Fetcher) *weather.Client {
	return weather.NewClient(weather.ClientConfig{
		APIKey:         cfg.Wunderground.APIKey,
		Query:          cfg.Wunderground.Query,
		BaseURL:        cfg.Wunderground.BaseURL,
		Units:          units,
		Options:        decodeOptions(cfg),
		HourlyMinItems: cfg.Decoder.HourlyMinItems,
		Fetcher:        f,
	})
}

func newSearchConfig(cfg *config.Config, f *fetch.Fetcher) (search.Config, error) {
	policy, err := search.ParsePolicy(cfg.Search.Policy)
	if err != nil {
		return search.Config{}, err
	}
	return search.Config{
		URL:     cfg.Wunderground.AutocompleteURL,
		Fetcher: f,
		Options: decodeOptions(cfg),
		Policy:  policy,
	}, nil
}

func logOutcome(o fetch.Outcome) {
	if o.Err != nil {
		log.Printf("fetch %s %s %s failed after %s: %v", o.RequestID, o.Kind, o.URL, o.Duration, o.Err)
		return
	}
	log.Printf("fetch %s %s %s in %s", o.RequestID, o.Kind, o.URL, o.Duration)
}

// failureKind names why a data-API read failed. Only fetch errors go
// through fetch.Classify, which would call anything else a transport error.
func failureKind(err error) string {
	var (
		decodeErr    *weather.DecodeError
		transportErr *fetch.TransportError
		statusErr    *fetch.HTTPStatusError
		jsonErr      *fetch.JSONDecodeError
	)
	switch {
	case errors.Is(err, weather.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, weather.ErrNoData):
		return "no_data"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &transportErr), errors.As(err, &statusErr), errors.As(err, &jsonErr):
		return fetch.Classify(err)
	}
	return "unknown"
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring service",
		Long:  "Start the collector, API server, and MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			units, err := weather.ParseUnits(cfg.Wunderground.Units)
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			// Create database
			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			log.Printf("Database opened at %s", cfg.Database.Path)

			// Every request is recorded with the API key hidden.
			var client *weather.Client
			fetcher := newFetcher(cfg, func(o fetch.Outcome) {
				o.URL = client.Redact(o.URL)
				if verbose {
					logOutcome(o)
				}
				if err := db.SaveFetch(o); err != nil {
					log.Printf("Error saving fetch record: %v", err)
				}
			})
			client = newClient(cfg, units, fetcher)

			searchCfg, err := newSearchConfig(cfg, fetcher)
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			// Create MQTT publisher
			var pub collector.Publisher
			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
				Discovery:   cfg.MQTT.Discovery,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
			} else {
				defer publisher.Close()
				pub = publisher
				if cfg.MQTT.Enabled {
					log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
				}
			}

			// Create collector
			coll := collector.NewCollector(collector.CollectorConfig{
				Provider:  client,
				Query:     cfg.Wunderground.Query,
				Units:     units,
				Database:  db,
				Publisher: pub,
				Interval:  cfg.Collector.Interval,
				Retention: cfg.Collector.Retention,
				Enabled:   cfg.Collector.Enabled,
			})

			// Setup context for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Handle signals
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			// Start collector in goroutine
			collectorDone := make(chan struct{})
			go func() {
				defer close(collectorDone)
				if err := coll.Start(ctx); err != nil {
					log.Printf("Collector error: %v", err)
				}
			}()

			// Start API server if enabled
			var server *api.Server
			if cfg.API.Enabled {
				server = api.NewServer(api.ServerConfig{
					Port:       cfg.API.Port,
					Collector:  coll,
					Database:   db,
					Client:     client,
					Search:     searchCfg,
					Config:     cfg,
					ConfigPath: configFile,
				})

				go func() {
					if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Printf("API server error: %v", err)
					}
				}()
			}

			log.Println("Wunderground Monitor started. Press Ctrl+C to stop.")

			// Wait for signal
			<-sigChan
			log.Println("Shutting down...")
			cancel()

			if server != nil {
				shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
				if err := server.Stop(shutdownCtx); err != nil {
					log.Printf("API server shutdown error: %v", err)
				}
				stop()
			}
			<-collectorDone

			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	var (
		unitsFlag string
		queryFlag string
	)
	cmd := &cobra.Command{
		Use:       "fetch <conditions|almanac|astronomy|forecast|hourly|hurricanes|alerts>",
		Short:     "Fetch one feature once",
		Long:      "Fetch and decode one Weather Underground feature for the configured location and print it as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"conditions", "almanac", "astronomy", "forecast", "hourly", "hurricanes", "alerts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if unitsFlag == "" {
				unitsFlag = cfg.Wunderground.Units
			}
			units, err := weather.ParseUnits(unitsFlag)
			if err != nil {
				return err
			}

			var observer fetch.Observer
			if verbose {
				observer = logOutcome
			}
			client := newClient(cfg, units, newFetcher(cfg, observer))
			if queryFlag != "" {
				client = client.WithLocation(queryFlag)
			}

			ctx := cmd.Context()
			var result any
			switch args[0] {
			case "conditions":
				result, err = client.Conditions(ctx)
			case "almanac":
				result, err = client.Almanac(ctx)
			case "astronomy":
				result, err = client.Astronomy(ctx)
			case "forecast":
				result, err = client.Forecast(ctx)
			case "hourly":
				result, err = client.Hourly(ctx)
			case "hurricanes":
				result, err = client.Hurricanes(ctx)
			case "alerts":
				result, err = client.Alerts(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", args[0], err)
			}

			return printJSON(result)
		},
	}
	cmd.Flags().StringVarP(&unitsFlag, "units", "u", "", "unit system (imperial or metric)")
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "location query, overrides the config")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Look up locations by name",
		Long:  "Query the autocomplete service and print matching locations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var observer fetch.Observer
			if verbose {
				observer = logOutcome
			}
			searchCfg, err := newSearchConfig(cfg, newFetcher(cfg, observer))
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			res, err := search.New(searchCfg).Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return printJSON(res)
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test access to the Weather Underground API",
		Long:  "Fetch current conditions for the configured location and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			units, err := weather.ParseUnits(cfg.Wunderground.Units)
			if err != nil {
				return err
			}

			fmt.Printf("Testing access for %q...\n", cfg.Wunderground.Query)

			var client *weather.Client
			client = newClient(cfg, units, newFetcher(cfg, func(o fetch.Outcome) {
				if verbose {
					o.URL = client.Redact(o.URL)
					logOutcome(o)
				}
			}))

			c, err := client.Conditions(cmd.Context())
			if err != nil {
				fmt.Printf("Request FAILED (%s): %v\n", failureKind(err), err)
				return err
			}

			fmt.Println("Request SUCCESS!")

			tempUnit := units.Pick("°F", "°C")
			speedUnit := units.Pick("mph", "km/h")
			fmt.Printf("\nStation:\n")
			fmt.Printf("  Location:      %s\n", c.Display.Full)
			fmt.Printf("  Station ID:    %s\n", c.Current.StationID)
			fmt.Printf("  Observed:      %s\n", c.Time.ObservationTime)
			fmt.Printf("\nCurrent Values:\n")
			fmt.Printf("  Weather:       %s\n", c.Current.Weather)
			fmt.Printf("  Temperature:   %.1f %s\n", c.Temperature.Temp, tempUnit)
			fmt.Printf("  Feels Like:    %s %s\n", c.Temperature.FeelsLike, tempUnit)
			fmt.Printf("  Humidity:      %s\n", c.Current.Humidity)
			fmt.Printf("  Wind:          %s %.1f %s\n", c.Wind.Direction, c.Wind.Speed, speedUnit)
			fmt.Printf("  Pressure:      %s\n", c.Current.Pressure)

			return nil
		},
	}
}
