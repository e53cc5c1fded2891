package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Render    RenderConfig    `mapstructure:"render"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	Domains   DomainsConfig   `mapstructure:"domains"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
	MigrationsDir  string `mapstructure:"migrations_dir"`
}

type CacheConfig struct {
	LinkTTL time.Duration `mapstructure:"link_ttl"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type RateLimitConfig struct {
	RedirectPerMinute int `mapstructure:"redirect_per_minute"`
	APIReadPerMinute  int `mapstructure:"api_read_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
	RenderPerMinute   int `mapstructure:"render_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type RenderConfig struct {
	Backend          string        `mapstructure:"backend"`
	Encoder          string        `mapstructure:"encoder"`
	LogoFetchTimeout time.Duration `mapstructure:"logo_fetch_timeout"`
	MaxLogoBytes     int64         `mapstructure:"max_logo_bytes"`
	// LogoHosts lists the https hosts remote logos may be fetched from.
	LogoHosts        []string      `mapstructure:"logo_hosts"`
}

type WorkersConfig struct {
	ExpiryInterval time.Duration `mapstructure:"expiry_interval"`
}

type DomainsConfig struct {
	ShortDomain string `mapstructure:"short_domain"`
}

// WebhooksConfig names the endpoint that receives scan events. An empty URL
// disables delivery.
type WebhooksConfig struct {
	URL         string        `mapstructure:"url"`
	Secret      string        `mapstructure:"secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "file:./data/upiqr.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.migrations_dir", "./migrations")

	v.SetDefault("cache.link_ttl", 5*time.Minute)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_ttl", 24*time.Hour)

	v.SetDefault("rate_limit.redirect_per_minute", 600)
	v.SetDefault("rate_limit.api_read_per_minute", 300)
	v.SetDefault("rate_limit.api_write_per_minute", 60)
	v.SetDefault("rate_limit.render_per_minute", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("render.backend", "svg")
	v.SetDefault("render.encoder", "skip2")
	v.SetDefault("render.logo_fetch_timeout", 5*time.Second)
	v.SetDefault("render.max_logo_bytes", 5<<20)
	v.SetDefault("render.logo_hosts", []string{})

	v.SetDefault("workers.expiry_interval", time.Hour)
	v.SetDefault("domains.short_domain", "")

	v.SetDefault("webhooks.url", "")
	v.SetDefault("webhooks.secret", "")
	v.SetDefault("webhooks.timeout", 10*time.Second)
	v.SetDefault("webhooks.max_attempts", 3)
}

// Load reads the YAML file at path, falling back to defaults when path is
// empty. Environment variables override both (render.backend -> RENDER_BACKEND).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
