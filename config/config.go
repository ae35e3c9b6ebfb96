package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// insecureDevSecret is only accepted when log_level is "debug".
const insecureDevSecret = "default-very-insecure-secret-key"

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mysql" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

type SeedConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type ConsulConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	// Host is the address Consul uses to reach this service for health checks.
	Host string `mapstructure:"host"`
}

type RateLimitConfig struct {
	LoginPerMinute int `mapstructure:"login_per_minute"`
	LoginBurst     int `mapstructure:"login_burst"`
}

type SecureConfig struct {
	IsDevelopment bool `mapstructure:"is_development"`
}

type Config struct {
	HTTPPort    int    `mapstructure:"http_port"`
	GRPCPort    int    `mapstructure:"grpc_port"`
	LogLevel    string `mapstructure:"log_level"`
	ServiceName string `mapstructure:"service_name"`
	JwtSecret   string `mapstructure:"jwt_secret"`
	CookieName  string `mapstructure:"cookie_name"`

	Database  DatabaseConfig  `mapstructure:"database"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Consul    ConsulConfig    `mapstructure:"consul"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Secure    SecureConfig    `mapstructure:"secure"`
}

var AppConfig Config

// Flags returns the command line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (default: ./config.yaml or ./config/config.yaml)")
	fs.Int("http-port", 0, "HTTP listen port")
	fs.Int("grpc-port", 0, "gRPC listen port")
	fs.String("log-level", "", "log level (debug, info)")
	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 8000)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "admin")
	v.SetDefault("cookie_name", "jwt")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("seed.admin_email", "")
	v.SetDefault("seed.admin_password", "")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "root:root@tcp(127.0.0.1:3306)/admin?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "127.0.0.1:8500")
	v.SetDefault("consul.host", "127.0.0.1")
	v.SetDefault("rate_limit.login_per_minute", 5)
	v.SetDefault("rate_limit.login_burst", 5)
	v.SetDefault("secure.is_development", false)
}

// Load reads configuration from the optional config file, ADMIN_* environment
// variables and the parsed flag set, in increasing order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
		bindFlag(v, fs, "http_port", "http-port")
		bindFlag(v, fs, "grpc_port", "grpc-port")
		bindFlag(v, fs, "log_level", "log-level")
	}
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlag only binds flags the user actually set, so zero-valued flag
// defaults never shadow the config file or environment.
func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) {
	if f := fs.Lookup(name); f != nil && f.Changed {
		_ = v.BindPFlag(key, f)
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JwtSecret == "" {
		if c.LogLevel != "debug" {
			return errors.New("jwt_secret must be set")
		}
		c.JwtSecret = insecureDevSecret
	}
	if c.CookieName == "" {
		c.CookieName = "jwt"
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		c.RateLimit.LoginPerMinute = 5
	}
	if c.RateLimit.LoginBurst <= 0 {
		c.RateLimit.LoginBurst = c.RateLimit.LoginPerMinute
	}
	return nil
}

// UsingInsecureSecret reports whether the built-in development secret is active.
func (c *Config) UsingInsecureSecret() bool {
	return c.JwtSecret == insecureDevSecret
}

// InitConfig loads configuration into AppConfig, panicking on failure.
func InitConfig(fs *pflag.FlagSet) {
	cfg, err := Load(fs)
	if err != nil {
		panic(fmt.Errorf("fatal error loading config: %w", err))
	}
	AppConfig = *cfg
}
