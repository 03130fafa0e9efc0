// Package config loads the application configuration from an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigPath is used when GESTION360_CONFIG is not set.
const DefaultConfigPath = "gestion360.yaml"

// DefaultSecretKey is the development signing key. It is public, so any
// deployment still using it accepts tokens minted by anyone.
const DefaultSecretKey = "your-secret-key-change-in-production"

// Config is the top-level application configuration.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Tareas   TareasConfig   `mapstructure:"tareas"`
}

// HTTPConfig holds the Fiber server settings.
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	AuthRateLimit   int           `mapstructure:"auth_rate_limit"`
	AuthRateWindow  time.Duration `mapstructure:"auth_rate_window"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds the framework logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig holds one SQLite file per module.
type DatabaseConfig struct {
	AuthPath           string `mapstructure:"auth_path"`
	TareasPath         string `mapstructure:"tareas_path"`
	NotificacionesPath string `mapstructure:"notificaciones_path"`
	Debug              bool   `mapstructure:"debug"`
}

// AuthConfig holds token and account settings.
type AuthConfig struct {
	SecretKey            string        `mapstructure:"secret_key"`
	Issuer               string        `mapstructure:"issuer"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	AllowAdminSignup     bool          `mapstructure:"allow_admin_signup"`
	AdminNombre          string        `mapstructure:"admin_nombre"`
	AdminEmail           string        `mapstructure:"admin_email"`
	AdminPassword        string        `mapstructure:"admin_password"`
}

// InsecureSecret reports whether tokens are signed with the public default
// key.
func (c AuthConfig) InsecureSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// RedisConfig is optional: an empty Addr disables the counter cache and the
// shared rate-limit storage.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Prefix   string        `mapstructure:"prefix"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// TareasConfig holds lifecycle policy switches.
type TareasConfig struct {
	// DualNotifyOnReassign keeps both the assignment and the update
	// notification when an update changes the assignee.
	DualNotifyOnReassign bool `mapstructure:"dual_notify_on_reassign"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"http.port":                      "HTTP_PORT",
	"http.auth_rate_limit":           "AUTH_RATE_LIMIT",
	"http.auth_rate_window":          "AUTH_RATE_WINDOW",
	"http.shutdown_timeout":          "SHUTDOWN_TIMEOUT",
	"log.level":                      "LOG_LEVEL",
	"database.auth_path":             "AUTH_DB_PATH",
	"database.tareas_path":           "TAREAS_DB_PATH",
	"database.notificaciones_path":   "NOTIFICACIONES_DB_PATH",
	"database.debug":                 "DB_DEBUG",
	"auth.secret_key":                "JWT_SECRET_KEY",
	"auth.issuer":                    "JWT_ISSUER",
	"auth.access_token_duration":     "JWT_ACCESS_TTL",
	"auth.refresh_token_duration":    "JWT_REFRESH_TTL",
	"auth.allow_admin_signup":        "AUTH_ALLOW_ADMIN_SIGNUP",
	"auth.admin_nombre":              "ADMIN_NOMBRE",
	"auth.admin_email":               "ADMIN_EMAIL",
	"auth.admin_password":            "ADMIN_PASSWORD",
	"redis.addr":                     "REDIS_ADDR",
	"redis.prefix":                   "CACHE_PREFIX",
	"redis.cache_ttl":                "CACHE_TTL",
	"tareas.dual_notify_on_reassign": "TAREAS_DUAL_NOTIFY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.auth_rate_limit", 20)
	v.SetDefault("http.auth_rate_window", time.Minute)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.auth_path", "gestion360_auth.db")
	v.SetDefault("database.tareas_path", "gestion360_tareas.db")
	v.SetDefault("database.notificaciones_path", "gestion360_notificaciones.db")
	v.SetDefault("database.debug", false)
	v.SetDefault("auth.secret_key", DefaultSecretKey)
	v.SetDefault("auth.issuer", "gestion360")
	v.SetDefault("auth.access_token_duration", 2*time.Hour)
	v.SetDefault("auth.refresh_token_duration", 7*24*time.Hour)
	v.SetDefault("auth.allow_admin_signup", false)
	v.SetDefault("auth.admin_nombre", "Administrador")
	v.SetDefault("redis.prefix", "gestion360:")
	v.SetDefault("redis.cache_ttl", 5*time.Minute)
	v.SetDefault("tareas.dual_notify_on_reassign", true)
}

// Load reads the YAML file at path (a missing file is not an error) and
// applies environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadDefault loads the file named by GESTION360_CONFIG, falling back to
// DefaultConfigPath.
func LoadDefault() (*Config, error) {
	path := os.Getenv("GESTION360_CONFIG")
	if path == "" {
		path = DefaultConfigPath
	}
	return Load(path)
}
