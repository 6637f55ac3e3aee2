package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only meant for local development
const DefaultJWTSecret = "shift-relay-dev-secret"

// Config holds the server and client settings
type Config struct {
	Env                 string `yaml:"env" validate:"required"`
	Port                string `yaml:"port" validate:"required,numeric"`
	GinMode             string `yaml:"ginMode" validate:"omitempty,oneof=debug release test"`
	StoreDriver         string `yaml:"storeDriver" validate:"oneof=file sqlite postgres"`
	DataPath            string `yaml:"dataPath"`
	DatabaseURL         string `yaml:"databaseURL" validate:"required_if=StoreDriver postgres"`
	JWTSecret           string `yaml:"jwtSecret" validate:"required"`
	AdminUsername       string `yaml:"adminUsername" validate:"required"`
	AdminPassword       string `yaml:"adminPassword" validate:"required"`
	AdminEmail          string `yaml:"adminEmail" validate:"omitempty,email"`
	DefaultPassword     string `yaml:"defaultPassword" validate:"required"`
	Timezone            string `yaml:"timezone"`
	LogDir              string `yaml:"logDir"`
	NotifyMinutesBefore int    `yaml:"notifyMinutesBefore" validate:"min=0,max=720"`
	ServerURL           string `yaml:"serverURL" validate:"required,url"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Env:                 "dev",
		Port:                "8000",
		StoreDriver:         "file",
		JWTSecret:           DefaultJWTSecret,
		AdminUsername:       "ADMIN",
		AdminPassword:       "admin123",
		DefaultPassword:     "shift123",
		NotifyMinutesBefore: 30,
		ServerURL:           "http://localhost:8000/api",
	}
}

// Load reads .env (current and parent directories), an optional YAML
// file named by RELAY_CONFIG, then environment variables, in increasing
// precedence.
func Load() (*Config, error) {
	loadDotEnv()
	return LoadFromPath(os.Getenv("RELAY_CONFIG"))
}

// LoadFromPath is Load without the .env lookup; path may be empty
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.DataPath == "" {
		cfg.DataPath = defaultDataPath(cfg.StoreDriver)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration struct and the timezone name
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return nil
}

// Location returns the zone shift hours are interpreted in
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func loadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("RELAY_ENV", cfg.Env)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.StoreDriver = getEnv("STORE_DRIVER", cfg.StoreDriver)
	cfg.DataPath = getEnv("DATA_PATH", cfg.DataPath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.DefaultPassword = getEnv("DEFAULT_PASSWORD", cfg.DefaultPassword)
	cfg.Timezone = getEnv("RELAY_TIMEZONE", cfg.Timezone)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.NotifyMinutesBefore = getEnvInt("NOTIFY_MINUTES_BEFORE", cfg.NotifyMinutesBefore)
	cfg.ServerURL = getEnv("RELAY_SERVER_URL", cfg.ServerURL)
}

func defaultDataPath(driver string) string {
	if driver == "sqlite" {
		return "shift_relay.db"
	}
	return "shift_relay.json"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}
