package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	RunModeOnce  = "once"
	RunModeServe = "serve"

	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	QueueMemory = "memory"
	QueueSQS    = "sqs"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	RunMode     string
	HTTPPort    string

	StoreBackend string
	QueueBackend string

	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	QueueName             string
	DocumentCollection    string
	DeclarationCollection string
	DeclarationCount      int
	PublishConcurrency    int
	KeepAliveInterval     time.Duration

	PostgresDSN string
	SQLitePath  string

	LogLevel  string
	LogFormat string

	BurstCount   int
	BurstGroupID string
	BurstDelay   time.Duration
}

// Default returns the configuration used against a LocalStack environment.
func Default() Config {
	return Config{
		ServiceName:           "dce-seeder",
		RunMode:               RunModeOnce,
		HTTPPort:              "8080",
		StoreBackend:          StoreDynamoDB,
		QueueBackend:          QueueSQS,
		AWSRegion:             "sa-east-1",
		AWSEndpoint:           "http://localhost:4566",
		AWSAccessKeyID:        "test",
		AWSSecretAccessKey:    "test",
		QueueName:             "worker-dce-queue.fifo",
		DocumentCollection:    "tbrw9002_docm_reme_supm",
		DeclarationCollection: "tbrw9001_decl_ctud_elet_supm",
		DeclarationCount:      5,
		KeepAliveInterval:     time.Minute,
		SQLitePath:            "seed.db",
		LogLevel:              "info",
		LogFormat:             "json",
		BurstCount:            5,
		BurstGroupID:          "default-group",
		BurstDelay:            time.Second,
	}
}

// Load reads the environment over the defaults and then applies the TOML
// file named by SEED_CONFIG_FILE, when set.
func Load() (Config, error) {
	return LoadFile(os.Getenv("SEED_CONFIG_FILE"))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file overlay.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.RunMode = strings.ToLower(envString("RUN_MODE", cfg.RunMode))
	cfg.HTTPPort = envString("HTTP_PORT", cfg.HTTPPort)
	cfg.StoreBackend = strings.ToLower(envString("STORE_BACKEND", cfg.StoreBackend))
	cfg.QueueBackend = strings.ToLower(envString("QUEUE_BACKEND", cfg.QueueBackend))
	cfg.AWSRegion = envString("AWS_REGION", cfg.AWSRegion)
	cfg.AWSEndpoint = envString("AWS_ENDPOINT_URL", cfg.AWSEndpoint)
	cfg.AWSAccessKeyID = envString("AWS_ACCESS_KEY_ID", cfg.AWSAccessKeyID)
	cfg.AWSSecretAccessKey = envString("AWS_SECRET_ACCESS_KEY", cfg.AWSSecretAccessKey)
	cfg.QueueName = envString("QUEUE_NAME", cfg.QueueName)
	cfg.DocumentCollection = envString("DOCUMENT_TABLE", cfg.DocumentCollection)
	cfg.DeclarationCollection = envString("DECLARATION_TABLE", cfg.DeclarationCollection)
	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	cfg.SQLitePath = envString("SQLITE_PATH", cfg.SQLitePath)
	cfg.LogLevel = strings.ToLower(envString("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envString("LOG_FORMAT", cfg.LogFormat))
	cfg.BurstGroupID = envString("BURST_GROUP_ID", cfg.BurstGroupID)

	var err error
	if cfg.DeclarationCount, err = envInt("DECLARATION_COUNT", cfg.DeclarationCount); err != nil {
		return Config{}, err
	}
	if cfg.PublishConcurrency, err = envInt("PUBLISH_CONCURRENCY", cfg.PublishConcurrency); err != nil {
		return Config{}, err
	}
	if cfg.BurstCount, err = envInt("BURST_COUNT", cfg.BurstCount); err != nil {
		return Config{}, err
	}
	if cfg.KeepAliveInterval, err = envDuration("KEEP_ALIVE_INTERVAL", cfg.KeepAliveInterval); err != nil {
		return Config{}, err
	}
	if cfg.BurstDelay, err = envDuration("BURST_DELAY", cfg.BurstDelay); err != nil {
		return Config{}, err
	}
	if envBool("SEED_IN_MEMORY", false) {
		cfg.StoreBackend = StoreMemory
		cfg.QueueBackend = QueueMemory
	}

	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations no builder can serve.
func (c Config) Validate() error {
	var errs []error
	switch c.RunMode {
	case RunModeOnce, RunModeServe:
	default:
		errs = append(errs, fmt.Errorf("unknown run mode %q", c.RunMode))
	}
	switch c.StoreBackend {
	case StoreMemory, StoreDynamoDB, StoreSQLite:
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres store requires POSTGRES_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}
	switch c.QueueBackend {
	case QueueMemory, QueueSQS:
	default:
		errs = append(errs, fmt.Errorf("unknown queue backend %q", c.QueueBackend))
	}
	if strings.TrimSpace(c.QueueName) == "" {
		errs = append(errs, errors.New("queue name is required"))
	}
	if strings.TrimSpace(c.DocumentCollection) == "" || strings.TrimSpace(c.DeclarationCollection) == "" {
		errs = append(errs, errors.New("collection names are required"))
	}
	if c.DeclarationCount < 0 {
		errs = append(errs, fmt.Errorf("declaration count must not be negative, got %d", c.DeclarationCount))
	}
	if c.PublishConcurrency < 0 {
		errs = append(errs, fmt.Errorf("publish concurrency must not be negative, got %d", c.PublishConcurrency))
	}
	if c.RunMode == RunModeServe && c.KeepAliveInterval <= 0 {
		errs = append(errs, errors.New("keep-alive interval must be positive in serve mode"))
	}
	if c.BurstCount < 0 || c.BurstDelay < 0 {
		errs = append(errs, errors.New("burst count and delay must not be negative"))
	}
	return errors.Join(errs...)
}

type fileConfig struct {
	ServiceName           string `toml:"service_name"`
	RunMode               string `toml:"run_mode"`
	HTTPPort              string `toml:"http_port"`
	StoreBackend          string `toml:"store_backend"`
	QueueBackend          string `toml:"queue_backend"`
	AWSRegion             string `toml:"aws_region"`
	AWSEndpoint           string `toml:"aws_endpoint"`
	AWSAccessKeyID        string `toml:"aws_access_key_id"`
	AWSSecretAccessKey    string `toml:"aws_secret_access_key"`
	QueueName             string `toml:"queue_name"`
	DocumentCollection    string `toml:"document_table"`
	DeclarationCollection string `toml:"declaration_table"`
	DeclarationCount      int    `toml:"declaration_count"`
	PublishConcurrency    int    `toml:"publish_concurrency"`
	KeepAliveInterval     string `toml:"keep_alive_interval"`
	PostgresDSN           string `toml:"postgres_dsn"`
	SQLitePath            string `toml:"sqlite_path"`
	LogLevel              string `toml:"log_level"`
	LogFormat             string `toml:"log_format"`
	BurstCount            int    `toml:"burst_count"`
	BurstGroupID          string `toml:"burst_group_id"`
	BurstDelay            string `toml:"burst_delay"`
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load seed config: %w", err)
	}

	setString := func(key string, value string, target *string) {
		if meta.IsDefined(key) {
			if v := strings.TrimSpace(value); v != "" {
				*target = v
			}
		}
	}
	setString("service_name", raw.ServiceName, &cfg.ServiceName)
	setString("run_mode", strings.ToLower(raw.RunMode), &cfg.RunMode)
	setString("http_port", raw.HTTPPort, &cfg.HTTPPort)
	setString("store_backend", strings.ToLower(raw.StoreBackend), &cfg.StoreBackend)
	setString("queue_backend", strings.ToLower(raw.QueueBackend), &cfg.QueueBackend)
	setString("aws_region", raw.AWSRegion, &cfg.AWSRegion)
	setString("aws_endpoint", raw.AWSEndpoint, &cfg.AWSEndpoint)
	setString("aws_access_key_id", raw.AWSAccessKeyID, &cfg.AWSAccessKeyID)
	setString("aws_secret_access_key", raw.AWSSecretAccessKey, &cfg.AWSSecretAccessKey)
	setString("queue_name", raw.QueueName, &cfg.QueueName)
	setString("document_table", raw.DocumentCollection, &cfg.DocumentCollection)
	setString("declaration_table", raw.DeclarationCollection, &cfg.DeclarationCollection)
	setString("postgres_dsn", raw.PostgresDSN, &cfg.PostgresDSN)
	setString("sqlite_path", raw.SQLitePath, &cfg.SQLitePath)
	setString("log_level", strings.ToLower(raw.LogLevel), &cfg.LogLevel)
	setString("log_format", strings.ToLower(raw.LogFormat), &cfg.LogFormat)
	setString("burst_group_id", raw.BurstGroupID, &cfg.BurstGroupID)

	if meta.IsDefined("declaration_count") {
		cfg.DeclarationCount = raw.DeclarationCount
	}
	if meta.IsDefined("publish_concurrency") {
		cfg.PublishConcurrency = raw.PublishConcurrency
	}
	if meta.IsDefined("burst_count") {
		cfg.BurstCount = raw.BurstCount
	}
	if meta.IsDefined("keep_alive_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.KeepAliveInterval))
		if err != nil {
			return fmt.Errorf("parse keep_alive_interval: %w", err)
		}
		cfg.KeepAliveInterval = d
	}
	if meta.IsDefined("burst_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.BurstDelay))
		if err != nil {
			return fmt.Errorf("parse burst_delay: %w", err)
		}
		cfg.BurstDelay = d
	}
	return nil
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
