// Package config loads lead-scout settings from config.yaml, .env files and
// SCOUT_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "SCOUT"

// Config holds the full application configuration.
type Config struct {
	Apify      ApifyConfig      `yaml:"apify" mapstructure:"apify"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Campaign   CampaignConfig   `yaml:"campaign" mapstructure:"campaign"`
	Normalize  NormalizeConfig  `yaml:"normalize" mapstructure:"normalize"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Auth       AuthConfig       `yaml:"auth" mapstructure:"auth"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ApifyConfig configures the scraping actor.
type ApifyConfig struct {
	Token            string `yaml:"token" mapstructure:"token"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	ActorID          string `yaml:"actor_id" mapstructure:"actor_id"`
	PageLimit        int    `yaml:"page_limit" mapstructure:"page_limit"`
	Zoom             int    `yaml:"zoom" mapstructure:"zoom"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
}

// RetryConfig configures retries around actor calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CampaignConfig selects the outreach templates.
type CampaignConfig struct {
	Name          string `yaml:"name" mapstructure:"name"`
	TemplatesPath string `yaml:"templates_path" mapstructure:"templates_path"`
}

// NormalizeConfig adds field aliases on top of the built-in ones.
type NormalizeConfig struct {
	ExtraAliases map[string][]string `yaml:"extra_aliases" mapstructure:"extra_aliases"`
}

// PipelineConfig configures record processing.
type PipelineConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AuthConfig configures the API login gate.
type AuthConfig struct {
	Passphrase     string `yaml:"passphrase" mapstructure:"passphrase"`
	JWTSecret      string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	SessionTTLMins int    `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds JWT bearer flow settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("apify.token", "")
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.actor_id", "compass/crawler-google-places")
	v.SetDefault("apify.page_limit", 2)
	v.SetDefault("apify.zoom", 14)
	v.SetDefault("apify.timeout_secs", 600)
	v.SetDefault("apify.poll_interval_secs", 5)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("campaign.name", "")
	v.SetDefault("campaign.templates_path", "")
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "csv")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "scout.db")
	v.SetDefault("auth.passphrase", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl_mins", 720)
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.lead_db", "")
	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.key_path", "")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env. Existing environment variables
// win, and missing files are ignored.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "config: load %s", name)
		}
	}
	return nil
}

// Validate checks the keys a command needs. mode is one of scan, process,
// serve, push.notion or push.salesforce.
func (c *Config) Validate(mode string) error {
	var errs []string
	require := func(ok bool, key string) {
		if !ok {
			errs = append(errs, key+" is required")
		}
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	require(c.Store.DatabaseURL != "", "store.database_url")
	if c.Pipeline.Concurrency < 1 {
		errs = append(errs, "pipeline.concurrency must be >= 1")
	}

	switch mode {
	case "scan":
		require(c.Apify.Token != "", "apify.token")
		errs = append(errs, c.validateApify()...)
	case "process":
	case "serve":
		require(c.Apify.Token != "", "apify.token")
		errs = append(errs, c.validateApify()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "push.notion":
		require(c.Notion.Token != "", "notion.token")
		require(c.Notion.LeadDB != "", "notion.lead_db")
	case "push.salesforce":
		require(c.Salesforce.ClientID != "", "salesforce.client_id")
		require(c.Salesforce.Username != "", "salesforce.username")
		require(c.Salesforce.KeyPath != "", "salesforce.key_path")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateApify() []string {
	var errs []string
	if c.Apify.PageLimit < 1 {
		errs = append(errs, "apify.page_limit must be >= 1")
	}
	if c.Apify.Zoom < 1 || c.Apify.Zoom > 21 {
		errs = append(errs, "apify.zoom must be between 1 and 21")
	}
	if c.Apify.TimeoutSecs <= 0 {
		errs = append(errs, "apify.timeout_secs must be > 0")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
