package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	MongoURI  string `yaml:"mongodb_uri"`
	DBName    string `yaml:"db_name"`
	JWTSecret string `yaml:"jwt_secret"`
	Port      string `yaml:"port"`
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`

	AIBaseURL string        `yaml:"ai_api_url"`
	AITimeout time.Duration `yaml:"ai_timeout"`

	CloudinaryURL       string `yaml:"cloudinary_url"`
	CloudinaryCloudName string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret string `yaml:"cloudinary_api_secret"`

	ResendAPIKey string `yaml:"resend_api_key"`
	FromEmail    string `yaml:"from_email"`

	CORSOrigins     []string `yaml:"cors_origins"`
	LoginRatePerMin int      `yaml:"login_rate_per_min"`

	// TrustProxy honours X-Real-IP / X-Forwarded-For. Only set it behind a
	// proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

func defaults() Config {
	return Config{
		DBName:          "investmate",
		Port:            "8080",
		Env:             "development",
		LogLevel:        "info",
		AITimeout:       30 * time.Second,
		CORSOrigins:     []string{"*"},
		LoginRatePerMin: 10,
	}
}

// Load reads .env (if any), then the optional YAML file named by CONFIG_FILE,
// then applies environment variables on top.
func Load() (*Config, error) {
	// .env is optional; in production env vars are set directly
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.MongoURI, "MONGODB_URI")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.AIBaseURL, "INVESTMATE_AI_API_URL")
	setString(&cfg.CloudinaryURL, "CLOUDINARY_URL")
	setString(&cfg.CloudinaryCloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&cfg.CloudinaryAPIKey, "CLOUDINARY_API_KEY")
	setString(&cfg.CloudinaryAPISecret, "CLOUDINARY_API_SECRET")
	setString(&cfg.ResendAPIKey, "RESEND_API_KEY")
	setString(&cfg.FromEmail, "FROM_EMAIL")

	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AI_TIMEOUT %q: %w", v, err)
		}
		cfg.AITimeout = d
	}
	if v := os.Getenv("LOGIN_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LOGIN_RATE_PER_MIN %q: %w", v, err)
		}
		cfg.LoginRatePerMin = n
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY %q: %w", v, err)
		}
		cfg.TrustProxy = b
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.LoginRatePerMin <= 0 {
		return errors.New("LOGIN_RATE_PER_MIN must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AIEnabled reports whether an external AI endpoint is configured.
func (c *Config) AIEnabled() bool {
	return c.AIBaseURL != ""
}
