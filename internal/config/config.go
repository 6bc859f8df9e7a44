// Package config loads storefront and order-service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

const (
	defaultEnvFile         = ".env"
	defaultOrderServiceURL = "http://localhost:5000"
	defaultRequestTimeout  = 10 * time.Second
	defaultCurrency        = "INR"
	defaultMessagingPhone  = "916360764937"
	defaultAdminSecret     = "admin123"
	defaultLogLevel        = "info"
	defaultLogFile         = "storefront.log"
	defaultPort            = "5000"
	defaultKafkaTopic      = "storefront.operator-messages"
)

const (
	ChannelBrowser = "browser"
	ChannelKafka   = "kafka"
	ChannelLog     = "log"
)

type Config struct {
	Orders    OrdersConfig
	Catalog   CatalogConfig
	Messaging MessagingConfig
	Kafka     KafkaConfig
	Admin     AdminConfig
	Log       LogConfig
	Server    ServerConfig
	Database  DatabaseConfig
}

type OrdersConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	Currency       currency.Unit
}

// CatalogConfig: File wins over BaseURL when both are set.
type CatalogConfig struct {
	BaseURL string
	File    string
}

type MessagingConfig struct {
	Phone   string
	Channel string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AdminConfig struct {
	Secret string
}

type LogConfig struct {
	Level string
	File  string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

// ValidationError is returned when configuration values are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

type Option func(*loaderOptions)

func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects values that take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load combines defaults, the .env file, the process environment and explicit overrides, in
// increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnv[key]
		return value, ok
	}

	var invalid []string

	timeout, err := durationWithDefault(lookup, "REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil || timeout <= 0 {
		invalid = append(invalid, "REQUEST_TIMEOUT")
	}

	unit, err := currency.ParseISO(stringWithDefault(lookup, "STORE_CURRENCY", defaultCurrency))
	if err != nil {
		invalid = append(invalid, "STORE_CURRENCY")
	}

	orderURL := stringWithDefault(lookup, "ORDER_SERVICE_URL", defaultOrderServiceURL)

	cfg := Config{
		Orders: OrdersConfig{
			BaseURL:        orderURL,
			RequestTimeout: timeout,
			Currency:       unit,
		},
		Catalog: CatalogConfig{
			BaseURL: stringWithDefault(lookup, "CATALOG_URL", orderURL),
			File:    stringWithDefault(lookup, "CATALOG_FILE", ""),
		},
		Messaging: MessagingConfig{
			Phone:   stringWithDefault(lookup, "MESSAGING_PHONE", defaultMessagingPhone),
			Channel: strings.ToLower(stringWithDefault(lookup, "MESSAGING_CHANNEL", ChannelBrowser)),
		},
		Kafka: KafkaConfig{
			Brokers: csvWithDefault(lookup, "KAFKA_BROKERS"),
			Topic:   stringWithDefault(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		},
		Admin: AdminConfig{
			Secret: stringWithDefault(lookup, "ADMIN_SECRET", defaultAdminSecret),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
			File:  stringWithDefault(lookup, "STOREFRONT_LOG_FILE", defaultLogFile),
		},
		Server: ServerConfig{
			Port: stringWithDefault(lookup, "PORT", defaultPort),
		},
		Database: DatabaseConfig{
			URL: stringWithDefault(lookup, "DATABASE_URL", ""),
		},
	}

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	if !validHTTPURL(cfg.Orders.BaseURL) {
		invalid = append(invalid, "ORDER_SERVICE_URL")
	}
	if cfg.Catalog.File == "" && !validHTTPURL(cfg.Catalog.BaseURL) {
		invalid = append(invalid, "CATALOG_URL")
	}
	if strings.TrimSpace(cfg.Messaging.Phone) == "" {
		invalid = append(invalid, "MESSAGING_PHONE")
	}

	switch cfg.Messaging.Channel {
	case ChannelBrowser, ChannelLog:
	case ChannelKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			invalid = append(invalid, "KAFKA_BROKERS")
		}
		if cfg.Kafka.Topic == "" {
			invalid = append(invalid, "KAFKA_TOPIC")
		}
	default:
		invalid = append(invalid, "MESSAGING_CHANNEL")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("godotenv.Read[%s]: %w", path, err)
	}

	return values, nil
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) (time.Duration, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(strings.TrimSpace(value))
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
