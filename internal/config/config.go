package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Service names double as the config key for per-service defaults.
const (
	Gateway  = "gateway"
	Finance  = "finance"
	Goals    = "goals"
	Accounts = "accounts"
	Insight  = "insight"
)

var defaultPorts = map[string]int{
	Gateway:  8081,
	Finance:  8082,
	Goals:    8083,
	Accounts: 8084,
	Insight:  8085,
}

type Config struct {
	Service    string           `mapstructure:"-"`
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Services   ServicesConfig   `mapstructure:"services"`
	Events     EventsConfig     `mapstructure:"events"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Insight    InsightConfig    `mapstructure:"insight"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN returns a libpq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// InMemory reports whether the service should run without a database.
func (d DatabaseConfig) InMemory() bool {
	return d.Driver == "memory"
}

type ServicesConfig struct {
	FinanceURL    string        `mapstructure:"finance_url"`
	GoalsURL      string        `mapstructure:"goals_url"`
	AccountsURL   string        `mapstructure:"accounts_url"`
	InsightURL    string        `mapstructure:"insight_url"`
	ClientTimeout time.Duration `mapstructure:"client_timeout"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type DispatcherConfig struct {
	Capacity int64         `mapstructure:"capacity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type GatewayConfig struct {
	PublicURL      string   `mapstructure:"public_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type InsightConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Load reads configuration for the named service. Values come from built-in
// defaults, then configs/config.yaml when present, then FINTRACK_* environment
// variables. A .env file in the working directory is loaded first.
func Load(service string) (*Config, error) {
	port, ok := defaultPorts[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}

	// Missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath("./configs")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FINTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, service, port)

	// Plain names kept for container setups that predate the prefix
	_ = v.BindEnv("server.port", "FINTRACK_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.host", "FINTRACK_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "FINTRACK_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "FINTRACK_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "FINTRACK_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "FINTRACK_DATABASE_NAME", "DB_NAME")

	var fileLookupError viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &fileLookupError) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{Service: service}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, service string, port int) {
	v.SetDefault("env", "production")

	v.SetDefault("server.port", port)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "fintrack_"+service)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("services.finance_url", fmt.Sprintf("http://localhost:%d", defaultPorts[Finance]))
	v.SetDefault("services.goals_url", fmt.Sprintf("http://localhost:%d", defaultPorts[Goals]))
	v.SetDefault("services.accounts_url", fmt.Sprintf("http://localhost:%d", defaultPorts[Accounts]))
	v.SetDefault("services.insight_url", fmt.Sprintf("http://localhost:%d", defaultPorts[Insight]))
	v.SetDefault("services.client_timeout", 10*time.Second)

	v.SetDefault("events.brokers", []string{})

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", false)

	v.SetDefault("dispatcher.capacity", 16)
	v.SetDefault("dispatcher.timeout", 5*time.Second)

	v.SetDefault("gateway.public_url", fmt.Sprintf("http://localhost:%d", defaultPorts[Gateway]))
	v.SetDefault("gateway.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("insight.sweep_interval", time.Duration(0))
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Dispatcher.Capacity <= 0 {
		return fmt.Errorf("dispatcher capacity must be positive")
	}
	return nil
}
