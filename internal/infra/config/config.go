package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Availability source modes.
const (
	SourceMemory = "memory"
	SourceHTTP   = "http"
	SourceMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                  string
	HTTPAddr             string
	Currency             string
	Location             *time.Location
	AvailabilitySource   string
	AvailabilityAPIURL   string
	AvailabilityTimeout  time.Duration
	AvailabilityFixtures string
	MongoURI             string
	MongoDB              string
	KafkaBrokers         []string
	KafkaTopicPrefix     string
	OutboxPollInterval   time.Duration
	RetryBackoff         []time.Duration
	CORSOrigins          []string
	CORSAllowAll         bool
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                  getEnv("APP_ENV", "dev"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		Currency:             strings.ToUpper(getEnv("CURRENCY", "USD")),
		AvailabilitySource:   strings.ToLower(getEnv("AVAILABILITY_SOURCE", SourceMemory)),
		AvailabilityAPIURL:   strings.TrimRight(os.Getenv("AVAILABILITY_API_URL"), "/"),
		AvailabilityFixtures: os.Getenv("AVAILABILITY_FIXTURES"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDB:              getEnv("MONGO_DB", "rentals"),
		KafkaTopicPrefix:     getEnv("KAFKA_TOPIC_PREFIX", ""),
	}
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			cfg.CORSAllowAll = true
			cfg.CORSOrigins = nil
			break
		}
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	timeout, err := parseDurationEnv("AVAILABILITY_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.AvailabilityTimeout = timeout

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	switch cfg.AvailabilitySource {
	case SourceMemory:
	case SourceHTTP:
		if cfg.AvailabilityAPIURL == "" {
			return Config{}, fmt.Errorf("AVAILABILITY_API_URL is required when AVAILABILITY_SOURCE=http")
		}
	case SourceMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when AVAILABILITY_SOURCE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid AVAILABILITY_SOURCE %q", cfg.AvailabilitySource)
	}
	if len(cfg.Currency) != 3 {
		return Config{}, fmt.Errorf("invalid CURRENCY %q", cfg.Currency)
	}
	return cfg, nil
}

// UsesMongo reports whether any component needs a Mongo connection.
func (c Config) UsesMongo() bool {
	return c.MongoURI != ""
}

// UsesKafka reports whether verdict events are published to a broker.
func (c Config) UsesKafka() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}
