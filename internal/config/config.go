package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Geocoding provider names accepted in GEOCODER_PROVIDERS.
const (
	ProviderBigDataCloud = "bigdatacloud"
	ProviderNominatim    = "nominatim"
	ProviderMapbox       = "mapbox"
	ProviderGoogleMaps   = "googlemaps"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Empty means the embedded seed fixture.
	SeedFile        string
	DisplayTimezone *time.Location
	RefreshInterval time.Duration

	// Reverse geocoding configuration.
	GeocodingEnabled   bool
	GeocoderProviders  []string
	GeocodeTimeout     time.Duration
	GeocodeCacheSize   int
	BigDataCloudURL    string
	NominatimURL       string
	NominatimUserAgent string
	MapboxToken        string
	GoogleMapsAPIKey   string

	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaReportsTopic string
	KafkaStatusTopic  string
	KafkaGroupID      string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parsePositiveDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "Local")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SeedFile:        os.Getenv("SEED_FILE"),
		DisplayTimezone: tz,
		RefreshInterval: refreshInterval,

		GeocodingEnabled:   parseBool("GEOCODING_ENABLED", true),
		GeocoderProviders:  parseList(sharedcfg.EnvOrDefault("GEOCODER_PROVIDERS", ProviderNominatim)),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeCacheSize:   parseCacheSize(),
		BigDataCloudURL:    sharedcfg.EnvOrDefault("BIGDATACLOUD_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
		NominatimURL:       sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org/reverse"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "EmergencyDashboardApp/1.0"),
		MapboxToken:        os.Getenv("MAPBOX_TOKEN"),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),

		KafkaEnabled:      parseBool("KAFKA_ENABLED", false),
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportsTopic: sharedcfg.EnvOrDefault("KAFKA_REPORTS_TOPIC", "drone-emergency-reports"),
		KafkaStatusTopic:  sharedcfg.EnvOrDefault("KAFKA_STATUS_TOPIC", "emergency-report-status"),
		KafkaGroupID:      sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "emergency-dashboard"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GeocodingEnabled {
		if len(c.GeocoderProviders) == 0 {
			return errors.New("GEOCODER_PROVIDERS is required when GEOCODING_ENABLED is true")
		}
		for _, p := range c.GeocoderProviders {
			switch p {
			case ProviderBigDataCloud, ProviderNominatim:
			case ProviderMapbox:
				if c.MapboxToken == "" {
					return errors.New("GEOCODER_PROVIDERS includes mapbox but MAPBOX_TOKEN is not set")
				}
			case ProviderGoogleMaps:
				if c.GoogleMapsAPIKey == "" {
					return errors.New("GEOCODER_PROVIDERS includes googlemaps but GOOGLE_MAPS_API_KEY is not set")
				}
			default:
				return fmt.Errorf("unknown geocoder provider %q in GEOCODER_PROVIDERS", p)
			}
		}
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaReportsTopic == "" {
			return errors.New("KAFKA_REPORTS_TOPIC is required")
		}
		if c.KafkaStatusTopic == "" {
			return errors.New("KAFKA_STATUS_TOPIC is required")
		}
	}
	return nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return fallback
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
