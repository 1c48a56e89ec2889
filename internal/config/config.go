package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Worker   WorkerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Archive  ArchiveConfig
	YouTube  YouTubeConfig
	Slots    SlotsConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type WorkerConfig struct {
	MaxRetries      int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"timetube"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"timetube"`
	DBName   string `envconfig:"POSTGRES_DB" default:"timetube"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_TTL" default:"5m"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"timetube"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"timetube"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

// ArchiveConfig configures the optional MinIO archive of raw search
// responses. Disabled by default; resolution works without it.
type ArchiveConfig struct {
	Enabled   bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"search-archive"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type YouTubeConfig struct {
	APIKey          string        `envconfig:"YOUTUBE_API_KEY" required:"true"`
	SecondaryAPIKey string        `envconfig:"YOUTUBE_API_KEY_SECONDARY" default:""`
	MaxResults      int           `envconfig:"YOUTUBE_MAX_RESULTS" default:"50"`
	Timeout         time.Duration `envconfig:"YOUTUBE_TIMEOUT" default:"10s"`
}

type SlotsConfig struct {
	// Capacity caps the number of stored slots; 1440 is one per minute.
	Capacity int `envconfig:"SLOT_CAPACITY" default:"1440"`
	// Freshness is how long a stored slot answers without re-searching.
	Freshness time.Duration `envconfig:"SLOT_FRESHNESS" default:"168h"`
	// DefaultSpan is the window half-width when a request passes none.
	DefaultSpan int `envconfig:"SLOT_DEFAULT_SPAN" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
