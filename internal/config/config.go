package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/hestia/internal/grocery"
	"github.com/dukerupert/hestia/internal/recipe"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Recipe    RecipeConfig    `mapstructure:"recipe"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Backup    BackupConfig    `mapstructure:"backup"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// OllamaConfig configures the model backend used for classification and
// list generation.
type OllamaConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	Rate    float64       `mapstructure:"rate"`
	Burst   int           `mapstructure:"burst"`
}

type ReconcileConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type RecipeConfig struct {
	Units []string `mapstructure:"units"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

// BackupConfig configures encrypted database snapshots to S3-compatible
// storage.
type BackupConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	Retention  time.Duration `mapstructure:"retention"`
	Passphrase string        `mapstructure:"passphrase"`
	Prefix     string        `mapstructure:"prefix"`
	S3         S3Config      `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads config.yaml from the extra paths, ".", "./config" or
// /etc/hestia, then applies HESTIA_* environment overrides. A missing file
// is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/hestia/")

	v.SetEnvPrefix("HESTIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("database.path", "hestia.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ollama.enabled", true)
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2:1b")
	v.SetDefault("ollama.timeout", "60s")
	v.SetDefault("ollama.rate", 2)
	v.SetDefault("ollama.burst", 4)

	v.SetDefault("reconcile.threshold", grocery.DefaultDuplicateThreshold)
	v.SetDefault("recipe.units", recipe.DefaultUnits)

	v.SetDefault("ratelimit.per_minute", 60)

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("backup.retention", "720h")
	v.SetDefault("backup.prefix", "hestia")
	v.SetDefault("backup.passphrase", "")
	v.SetDefault("backup.s3.endpoint", "")
	v.SetDefault("backup.s3.bucket", "")
	v.SetDefault("backup.s3.region", "us-east-1")
	v.SetDefault("backup.s3.access_key", "")
	v.SetDefault("backup.s3.secret_key", "")
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Server.Port) == "" {
		return fmt.Errorf("server port is required (set HESTIA_SERVER_PORT)")
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required (set HESTIA_DATABASE_PATH)")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", cfg.Log.Format)
	}
	if cfg.Reconcile.Threshold <= 0 || cfg.Reconcile.Threshold > 1 {
		return fmt.Errorf("reconcile threshold must be in (0, 1], got: %v", cfg.Reconcile.Threshold)
	}
	if cfg.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate limit per minute must be positive, got: %d", cfg.RateLimit.PerMinute)
	}
	if cfg.Ollama.Enabled {
		if cfg.Ollama.URL == "" {
			return fmt.Errorf("ollama url is required when ollama is enabled")
		}
		if cfg.Ollama.Rate <= 0 {
			return fmt.Errorf("ollama rate must be positive, got: %v", cfg.Ollama.Rate)
		}
	}
	if cfg.Backup.Enabled {
		if err := validateBackup(&cfg.Backup); err != nil {
			return err
		}
	}
	return nil
}

func validateBackup(b *BackupConfig) error {
	if b.S3.Bucket == "" {
		return fmt.Errorf("backup bucket is required (set HESTIA_BACKUP_S3_BUCKET)")
	}
	if b.S3.AccessKey == "" || b.S3.SecretKey == "" {
		return fmt.Errorf("backup s3 credentials are required when backups are enabled")
	}
	if len(b.Passphrase) < 12 {
		return fmt.Errorf("backup passphrase must be at least 12 characters")
	}
	if b.Interval < time.Minute {
		return fmt.Errorf("backup interval must be at least 1m, got: %s", b.Interval)
	}
	if b.Retention < b.Interval {
		return fmt.Errorf("backup retention must not be shorter than the interval")
	}
	return nil
}
