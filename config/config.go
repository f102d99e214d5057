package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Chapa    ChapaConfig    `yaml:"chapa"`
	Email    EmailConfig    `yaml:"email"`
	Payment  PaymentConfig  `yaml:"payment"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// ChapaConfig holds the gateway credentials. The secret key is validated
// lazily when the first gateway call is made, not at startup.
type ChapaConfig struct {
	SecretKey   string `yaml:"secret_key"`
	BaseURL     string `yaml:"base_url"`
	CallbackURL string `yaml:"callback_url"`
	ReturnURL   string `yaml:"return_url"`
}

type EmailConfig struct {
	SMTPAddr string `yaml:"smtp_addr"`
	From     string `yaml:"from"`
}

type PaymentConfig struct {
	DefaultCurrency          string `yaml:"default_currency"`
	RegenerateStaleReference bool   `yaml:"regenerate_stale_reference"`
	PendingTTLMinutes        int    `yaml:"pending_ttl_minutes"`
	ListingsCacheTTLSeconds  int    `yaml:"listings_cache_ttl_seconds"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

const defaultChapaBaseURL = "https://api.chapa.co/v1"

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Chapa.BaseURL == "" {
		cfg.Chapa.BaseURL = defaultChapaBaseURL
	}
	cfg.Chapa.BaseURL = strings.TrimRight(cfg.Chapa.BaseURL, "/")
	if cfg.Payment.DefaultCurrency == "" {
		cfg.Payment.DefaultCurrency = "ETB"
	}

	return &cfg, nil
}
