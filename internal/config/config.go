package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath путь к YAML-файлу конфигурации
const EnvConfigPath = "TASKBOARD_CONFIG"

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
	// IP клиента из X-Forwarded-For / X-Real-IP; без доверенного прокси
	// клиент подменит заголовок и обойдет лимит на вход
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`

	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Board    BoardConfig    `yaml:"board"`
}

type DatabaseConfig struct {
	Host          string `yaml:"host"`
	Port          string `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Name          string `yaml:"name"`
	SSLMode       string `yaml:"ssl_mode"`
	MaxConns      int32  `yaml:"max_conns"`
	RunMigrations bool   `yaml:"run_migrations"`
}

// URL строка подключения в формате, понятном и pgx, и golang-migrate
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RabbitMQConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	AuditQueue string `yaml:"audit_queue"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	AccessTTL      time.Duration `yaml:"access_ttl"`
	RefreshTTL     time.Duration `yaml:"refresh_ttl"`
	CookieName     string        `yaml:"cookie_name"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	LoginPerMinute int           `yaml:"login_per_minute"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type BoardConfig struct {
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":9090",
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          "5432",
			User:          "postgres",
			Password:      "postgres",
			Name:          "taskboard",
			SSLMode:       "disable",
			MaxConns:      20,
			RunMigrations: true,
		},
		RabbitMQ: RabbitMQConfig{
			Host:       "localhost",
			Port:       "5672",
			User:       "guest",
			Password:   "guest",
			AuditQueue: "task_audit_logs",
		},
		Redis: RedisConfig{
			URL:      "redis://localhost:6379/0",
			CacheTTL: time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret:      "your-secret-key-change-in-production", // Default для разработки
			AccessTTL:      15 * time.Minute,
			RefreshTTL:     7 * 24 * time.Hour,
			CookieName:     "taskboard_session",
			LoginPerMinute: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Board: BoardConfig{
			SessionTTL:    30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл (если
// задан), затем переменные окружения.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc_addr is required"))
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		errs = append(errs, errors.New("database host and name are required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("auth token ttls must be positive"))
	}
	if c.Redis.CacheTTL < 0 {
		errs = append(errs, errors.New("redis.cache_ttl must not be negative"))
	}
	if c.Board.SessionTTL <= 0 || c.Board.SweepInterval <= 0 {
		errs = append(errs, errors.New("board session ttl and sweep interval must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
