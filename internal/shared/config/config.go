package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"horizon/internal/shared/errs"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Appwrite   AppwriteConfig
	Plaid      PlaidConfig
	Dwolla     DwollaConfig
	Encryption EncryptionConfig
	Session    SessionConfig
	Telemetry  TelemetryConfig
}

type AppConfig struct {
	Env string
}

type ServerConfig struct {
	Host string
	Port string
}

type AppwriteConfig struct {
	Endpoint         string
	ProjectID        string
	APIKey           string
	DatabaseID       string
	UserCollectionID string
	BankCollectionID string
}

type PlaidConfig struct {
	ClientID string
	Secret   string
	Env      string
}

type DwollaConfig struct {
	Key    string
	Secret string
	Env    string
}

type EncryptionConfig struct {
	Key string
}

type SessionConfig struct {
	CookieName string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

// envBindings maps viper keys to the environment variables that feed them.
var envBindings = map[string]string{
	"app.env":                  "APP_ENV",
	"server.host":              "HOST",
	"server.port":              "PORT",
	"appwrite.endpoint":        "APPWRITE_ENDPOINT",
	"appwrite.project_id":      "APPWRITE_PROJECT_ID",
	"appwrite.api_key":         "APPWRITE_API_KEY",
	"appwrite.database_id":     "APPWRITE_DATABASE_ID",
	"appwrite.user_collection": "APPWRITE_USER_COLLECTION_ID",
	"appwrite.bank_collection": "APPWRITE_BANK_COLLECTION_ID",
	"plaid.client_id":          "PLAID_CLIENT_ID",
	"plaid.secret":             "PLAID_SECRET",
	"plaid.env":                "PLAID_ENV",
	"dwolla.key":               "DWOLLA_KEY",
	"dwolla.secret":            "DWOLLA_SECRET",
	"dwolla.env":               "DWOLLA_ENVIRONMENT",
	"encryption.key":           "ENCRYPTION_KEY",
	"session.cookie_name":      "SESSION_COOKIE_NAME",
	"telemetry.enabled":        "OTEL_ENABLED",
	"telemetry.service_name":   "OTEL_SERVICE_NAME",
	"telemetry.otlp_endpoint":  "OTEL_EXPORTER_ENDPOINT",
	"telemetry.metrics_port":   "METRICS_PORT",
}

// Load reads configuration from the environment (and an optional .env
// file) and validates the parts the process cannot run without.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("plaid.env", "sandbox")
	v.SetDefault("session.cookie_name", "appwrite-session")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "horizon-api")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.metrics_port", "9090")

	cfg := &Config{
		App: AppConfig{
			Env: v.GetString("app.env"),
		},
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetString("server.port"),
		},
		Appwrite: AppwriteConfig{
			Endpoint:         v.GetString("appwrite.endpoint"),
			ProjectID:        v.GetString("appwrite.project_id"),
			APIKey:           v.GetString("appwrite.api_key"),
			DatabaseID:       v.GetString("appwrite.database_id"),
			UserCollectionID: v.GetString("appwrite.user_collection"),
			BankCollectionID: v.GetString("appwrite.bank_collection"),
		},
		Plaid: PlaidConfig{
			ClientID: v.GetString("plaid.client_id"),
			Secret:   v.GetString("plaid.secret"),
			Env:      v.GetString("plaid.env"),
		},
		Dwolla: DwollaConfig{
			Key:    v.GetString("dwolla.key"),
			Secret: v.GetString("dwolla.secret"),
			Env:    v.GetString("dwolla.env"),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("encryption.key"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session.cookie_name"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool("telemetry.enabled"),
			ServiceName:  v.GetString("telemetry.service_name"),
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
			MetricsPort:  v.GetString("telemetry.metrics_port"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Encryption.Key == "" {
		return &errs.ConfigurationError{Setting: "ENCRYPTION_KEY", Reason: "is required"}
	}
	if len(c.Encryption.Key) != 32 {
		return &errs.ConfigurationError{
			Setting: "ENCRYPTION_KEY",
			Reason:  fmt.Sprintf("must be exactly 32 bytes for AES-256, got %d", len(c.Encryption.Key)),
		}
	}
	if c.Appwrite.Endpoint == "" {
		return &errs.ConfigurationError{Setting: "APPWRITE_ENDPOINT", Reason: "is required"}
	}
	if c.Appwrite.ProjectID == "" {
		return &errs.ConfigurationError{Setting: "APPWRITE_PROJECT_ID", Reason: "is required"}
	}
	if c.Appwrite.APIKey == "" {
		return &errs.ConfigurationError{Setting: "APPWRITE_API_KEY", Reason: "is required"}
	}
	if c.IsProduction() && (c.Dwolla.Key == "" || c.Dwolla.Secret == "") {
		return &errs.ConfigurationError{
			Setting: "DWOLLA_KEY/DWOLLA_SECRET",
			Reason:  "must be set in production",
		}
	}
	return nil
}

// IsProduction reports whether the deployment environment is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// ResolveDwollaEnvironment returns the payment-network environment to use
// and whether a fallback happened. An unset or unrecognized value falls
// back to sandbox; it never defaults to production.
func (c *Config) ResolveDwollaEnvironment() (env string, fellBack bool) {
	switch strings.TrimSpace(c.Dwolla.Env) {
	case "production":
		return "production", false
	case "sandbox":
		return "sandbox", false
	default:
		return "sandbox", true
	}
}
