package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dmitrijs2005/hospivibe/internal/logging"
)

// EnvPrefix prefixes every environment variable the client reads.
const EnvPrefix = "HOSPIVIBE"

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds runtime settings for the HospiVibe CLI.
type Config struct {
	APIURL              string        `mapstructure:"api_url"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS        float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst      int           `mapstructure:"rate_limit_burst"`
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`

	SessionBackend string `mapstructure:"session_backend"`
	DBPath         string `mapstructure:"db_path"`
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`
	RedisPrefix    string `mapstructure:"redis_prefix"`

	LogLevel   string `mapstructure:"log_level"`
	LogBackend string `mapstructure:"log_backend"`
	LogFormat  string `mapstructure:"log_format"`

	LogoutOnUnauthorized bool `mapstructure:"logout_on_unauthorized"`
}

var defaults = map[string]any{
	"api_url":                "http://127.0.0.1:5000",
	"request_timeout":        15 * time.Second,
	"rate_limit_rps":         10.0,
	"rate_limit_burst":       20,
	"online_check_interval":  3 * time.Second,
	"session_backend":        BackendSQLite,
	"db_path":                "hospivibe.db",
	"redis_addr":             "127.0.0.1:6379",
	"redis_password":         "",
	"redis_db":               0,
	"redis_prefix":           "hospivibe:session:",
	"log_level":              "info",
	"log_backend":            logging.BackendSlog,
	"log_format":             logging.FormatText,
	"logout_on_unauthorized": true,
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-url":                "api_url",
	"request-timeout":        "request_timeout",
	"rate-limit-rps":         "rate_limit_rps",
	"rate-limit-burst":       "rate_limit_burst",
	"online-check-interval":  "online_check_interval",
	"session-backend":        "session_backend",
	"db-path":                "db_path",
	"redis-addr":             "redis_addr",
	"redis-password":         "redis_password",
	"redis-db":               "redis_db",
	"redis-prefix":           "redis_prefix",
	"log-level":              "log_level",
	"log-backend":            "log_backend",
	"log-format":             "log_format",
	"logout-on-unauthorized": "logout_on_unauthorized",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:               defaults["api_url"].(string),
		RequestTimeout:       defaults["request_timeout"].(time.Duration),
		RateLimitRPS:         defaults["rate_limit_rps"].(float64),
		RateLimitBurst:       defaults["rate_limit_burst"].(int),
		OnlineCheckInterval:  defaults["online_check_interval"].(time.Duration),
		SessionBackend:       BackendSQLite,
		DBPath:               defaults["db_path"].(string),
		RedisAddr:            defaults["redis_addr"].(string),
		RedisPrefix:          defaults["redis_prefix"].(string),
		LogLevel:             defaults["log_level"].(string),
		LogBackend:           logging.BackendSlog,
		LogFormat:            logging.FormatText,
		LogoutOnUnauthorized: true,
	}
}

// RegisterFlags adds the configuration flags to fs. Flag defaults are
// display only; a flag overrides other sources only when it is set.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("config", "c", "", "path to a JSON, YAML or TOML config file")
	fs.String("env-file", ".env", "dotenv file with HOSPIVIBE_* variables")

	fs.StringP("api-url", "a", d.APIURL, "base URL of the HospiVibe backend")
	fs.Duration("request-timeout", d.RequestTimeout, "timeout for a single backend request")
	fs.Float64("rate-limit-rps", d.RateLimitRPS, "client-side request rate limit (requests per second)")
	fs.Int("rate-limit-burst", d.RateLimitBurst, "client-side request burst")
	fs.DurationP("online-check-interval", "i", d.OnlineCheckInterval, "how often to check backend connectivity")

	fs.String("session-backend", d.SessionBackend, "where to keep the session: sqlite or redis")
	fs.String("db-path", d.DBPath, "SQLite database file")
	fs.String("redis-addr", d.RedisAddr, "Redis address for the redis session backend")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")
	fs.String("redis-prefix", d.RedisPrefix, "Redis key prefix")

	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-backend", d.LogBackend, "logger implementation: slog or zerolog")
	fs.String("log-format", d.LogFormat, "log format: text or json")

	fs.Bool("logout-on-unauthorized", d.LogoutOnUnauthorized, "sign out when the backend rejects the session")
}

// Load builds the configuration. Later sources override earlier ones:
//
//  1. built-in defaults
//  2. the optional config file (--config)
//  3. HOSPIVIBE_* variables from the dotenv file (--env-file)
//  4. HOSPIVIBE_* environment variables
//  5. flags that were set explicitly
//
// fs may be nil, in which case only defaults and the environment apply.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configFile, envFile := "", ".env"
	if fs != nil {
		configFile, _ = fs.GetString("config")
		if f := fs.Lookup("env-file"); f != nil {
			envFile = f.Value.String()
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		if err := v.MergeConfigMap(dotenv); err != nil {
			return nil, fmt.Errorf("merge %s: %w", envFile, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readDotenv returns the HOSPIVIBE_* entries of path as config keys. A
// missing file is not an error.
func readDotenv(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	out := make(map[string]any)
	for name, val := range vars {
		key, ok := strings.CutPrefix(name, EnvPrefix+"_")
		if !ok {
			continue
		}
		out[strings.ToLower(key)] = val
	}
	return out, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if c.APIURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %g rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online_check_interval must be positive, got %s", c.OnlineCheckInterval)
	}

	switch c.SessionBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite session backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session_backend %q", c.SessionBackend)
	}

	switch strings.ToLower(c.LogBackend) {
	case logging.BackendSlog, logging.BackendZerolog:
	default:
		return fmt.Errorf("unknown log_backend %q", c.LogBackend)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
