package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend constants
const (
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendNone     = "none"
)

// Quote provider constants
const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Sheets   SheetsConfig
	File     FileConfig
	Quotes   QuoteConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StoreConfig selects the position store and quote cache backends
type StoreConfig struct {
	Backend      string
	CacheBackend string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig holds quote cache configuration for Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// SheetsConfig holds Google Sheets configuration
type SheetsConfig struct {
	CredentialsJSON string
	SpreadsheetID   string
	PositionsTab    string
	QuotesTab       string
	OptionsTab      string
}

// FileConfig holds local file store configuration
type FileConfig struct {
	Path string
}

// QuoteConfig holds market data configuration
type QuoteConfig struct {
	Provider        string
	YahooBaseURL    string
	AlpacaKeyID     string
	AlpacaSecretKey string
	AlpacaBaseURL   string
	Concurrency     int
	CacheFallback   bool
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	Topic         string
	CommandsTopic string
	GroupID       string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// WorkerConfig holds quote refresh worker configuration
type WorkerConfig struct {
	RefreshInterval time.Duration
}

// Load reads configuration from a .env file, when present, and the environment
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables and validates it
func FromEnv() (*Config, error) {
	var parseErrs []error

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),
			CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", BackendNone)),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "carteira"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0, &parseErrs),
			Prefix:   getEnv("REDIS_PREFIX", "cotacao:"),
		},
		Sheets: SheetsConfig{
			CredentialsJSON: os.Getenv("GOOGLE_CREDS"),
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
			PositionsTab:    getEnv("SHEETS_POSITIONS_TAB", "Acoes"),
			QuotesTab:       getEnv("SHEETS_QUOTES_TAB", "Cotacoes"),
			OptionsTab:      getEnv("SHEETS_OPTIONS_TAB", "Opcoes"),
		},
		File: FileConfig{
			Path: getEnv("FILE_STORE_PATH", "carteira.json"),
		},
		Quotes: QuoteConfig{
			Provider:        strings.ToLower(getEnv("QUOTE_PROVIDER", ProviderYahoo)),
			YahooBaseURL:    os.Getenv("YAHOO_BASE_URL"),
			AlpacaKeyID:     os.Getenv("APCA_API_KEY_ID"),
			AlpacaSecretKey: os.Getenv("APCA_API_SECRET_KEY"),
			AlpacaBaseURL:   os.Getenv("APCA_API_DATA_URL"),
			Concurrency:     getEnvInt("QUOTE_FETCH_CONCURRENCY", 4, &parseErrs),
			CacheFallback:   getEnvBool("QUOTE_CACHE_FALLBACK", true, &parseErrs),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false, &parseErrs),
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:         getEnv("KAFKA_TOPIC", "carteira-events"),
			CommandsTopic: getEnv("KAFKA_COMMANDS_TOPIC", "carteira-commands"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "carteira-dashboard"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Worker: WorkerConfig{
			RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 5*time.Minute, &parseErrs),
		},
	}

	if err := cfg.Validate(); err != nil {
		parseErrs = append(parseErrs, err)
	}
	if len(parseErrs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %w", errors.Join(parseErrs...))
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	var missing []string

	switch c.Store.Backend {
	case BackendPostgres, BackendMemory:
	case BackendFile:
		requireEnv("FILE_STORE_PATH", c.File.Path, &missing)
	case BackendSheets:
		c.requireSheets(&missing)
	default:
		missing = append(missing, "STORE_BACKEND must be one of postgres, sheets, file, memory")
	}

	switch c.Store.CacheBackend {
	case BackendNone, BackendMemory, BackendPostgres:
	case BackendRedis:
		requireEnv("REDIS_ADDR", c.Redis.Addr, &missing)
	case BackendSheets:
		c.requireSheets(&missing)
	default:
		missing = append(missing, "CACHE_BACKEND must be one of redis, postgres, sheets, memory, none")
	}

	switch c.Quotes.Provider {
	case ProviderYahoo:
	case ProviderAlpaca:
		requireEnv("APCA_API_KEY_ID", c.Quotes.AlpacaKeyID, &missing)
		requireEnv("APCA_API_SECRET_KEY", c.Quotes.AlpacaSecretKey, &missing)
	default:
		missing = append(missing, "QUOTE_PROVIDER must be one of yahoo, alpaca")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS is required")
	}
	if c.Worker.RefreshInterval <= 0 {
		missing = append(missing, "REFRESH_INTERVAL must be positive")
	}

	if len(missing) > 0 {
		return errors.New(strings.Join(dedupe(missing), "; "))
	}
	return nil
}

func (c *Config) requireSheets(missing *[]string) {
	requireEnv("GOOGLE_CREDS", c.Sheets.CredentialsJSON, missing)
	requireEnv("SHEETS_SPREADSHEET_ID", c.Sheets.SpreadsheetID, missing)
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func requireEnv(name, value string, missing *[]string) {
	if strings.TrimSpace(value) == "" {
		*missing = append(*missing, name+" is required")
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
