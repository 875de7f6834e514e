package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	JWT          JWTConfig          `yaml:"jwt"`
	S3           S3Config           `yaml:"s3"`
	RabbitMQ     RabbitMQConfig     `yaml:"rabbitmq"`
	Notification NotificationConfig `yaml:"notification"`
	Bootstrap    BootstrapConfig    `yaml:"bootstrap"`
	Jobs         JobsConfig         `yaml:"jobs"`
	Logger       LoggerConfig       `yaml:"logger"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN returns the postgres DSN, preferring an explicit URL
func (d DatabaseConfig) GetDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL            string        `yaml:"url"`
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	UnreadCacheTTL time.Duration `yaml:"unread_cache_ttl"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

// NotificationConfig configures the optional outbound webhook that forwards
// notification drafts to an external delivery service.
type NotificationConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
}

// BootstrapConfig describes the admin account created once at startup
type BootstrapConfig struct {
	AdminName     string `yaml:"admin_name"`
	AdminPhone    string `yaml:"admin_phone"`
	AdminPassword string `yaml:"admin_password"`
}

// Enabled reports whether a bootstrap admin should be ensured
func (b BootstrapConfig) Enabled() bool {
	return b.AdminPhone != "" && b.AdminPassword != ""
}

type JobsConfig struct {
	AttachmentCleanupSpec   string `yaml:"attachment_cleanup_spec"`
	NotificationCleanupSpec string `yaml:"notification_cleanup_spec"`
	NotificationRetainDays  int    `yaml:"notification_retain_days"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or env overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:8081"},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "site_tracker",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			UnreadCacheTTL: 5 * time.Minute,
		},
		JWT: JWTConfig{
			TokenTTL: 24 * time.Hour,
		},
		RabbitMQ: RabbitMQConfig{
			Queue: "workflow.transitions",
		},
		Notification: NotificationConfig{
			Timeout: 5 * time.Second,
		},
		Bootstrap: BootstrapConfig{
			AdminName: "Administrator",
		},
		Jobs: JobsConfig{
			AttachmentCleanupSpec:   "@every 1h",
			NotificationCleanupSpec: "0 3 * * *",
			NotificationRetainDays:  30,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (if present) and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Server.BasePath, "SERVER_BASE_PATH")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.Region, "S3_REGION")
	setString(&cfg.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&cfg.Notification.WebhookURL, "NOTIFICATION_WEBHOOK_URL")
	setString(&cfg.Notification.APIKey, "NOTIFICATION_API_KEY")
	setString(&cfg.Bootstrap.AdminName, "BOOTSTRAP_ADMIN_NAME")
	setString(&cfg.Bootstrap.AdminPhone, "BOOTSTRAP_ADMIN_PHONE")
	setString(&cfg.Bootstrap.AdminPassword, "BOOTSTRAP_ADMIN_PASSWORD")
	setString(&cfg.Logger.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
