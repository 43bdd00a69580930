package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

type DatabaseConfig struct {
	User         string `env:"POSTGRES_USER"`
	Password     string `env:"POSTGRES_PASSWORD"`
	Host         string `env:"POSTGRES_HOST" envDefault:"postgres"`
	Port         string `env:"POSTGRES_PORT" envDefault:"5432"`
	Name         string `env:"POSTGRES_DB" envDefault:"storefront"`
	SSLMode      string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

// DSN renders the connection URL understood by the pgx driver.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type KafkaConfig struct {
	Enabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	Broker  string `env:"KAFKA_BROKER" envDefault:"localhost:9092"`
	Topic   string `env:"KAFKA_TOPIC" envDefault:"order-requests"`
	GroupID string `env:"KAFKA_GROUP_ID" envDefault:"storefront_orders"`
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	OpTimeout time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"200ms"`
}

type HTTPConfig struct {
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type CacheConfig struct {
	ProductsTTL time.Duration `env:"CACHE_PRODUCTS_TTL" envDefault:"300s"`
}

type AuthConfig struct {
	SecretKey string        `env:"AUTH_SECRET_KEY"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"30m"`
}

type UploadConfig struct {
	Dir               string   `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxFileSize       int64    `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"5242880"`
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" envDefault:"jpg,jpeg,png,gif" envSeparator:","`
}

type ProducerConfig struct {
	Kafka KafkaConfig
}

type AppConfig struct {
	Database DatabaseConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Upload   UploadConfig
}

func LoadProducerConfig() (*ProducerConfig, error) {
	cfg := &ProducerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.User == "" || cfg.Database.Password == "" {
		return nil, errors.New("database credentials required")
	}
	if cfg.Auth.SecretKey == "" {
		return nil, errors.New("AUTH_SECRET_KEY is required")
	}
	if cfg.Database.MaxOpenConns < cfg.Database.MaxIdleConns {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS (%d) must not be below DB_MAX_IDLE_CONNS (%d)",
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	}
	if cfg.Cache.ProductsTTL <= 0 {
		return nil, errors.New("CACHE_PRODUCTS_TTL must be positive")
	}

	return cfg, nil
}
