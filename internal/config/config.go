package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Device    DeviceConfig
	Output    OutputConfig
	Options   OptionsConfig
	Engine    EngineConfig
	Log       LogConfig
	Auth      AuthConfig
	Retention RetentionConfig
	S3        S3Config
	DB        DBConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	// Workers bounds how many parses run at once on the bound device.
	Workers     int   `mapstructure:"workers"`
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
	// CORSOrigins lists browser origins allowed to call the API. "*" allows any.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DeviceConfig selects the accelerator this process is bound to.
type DeviceConfig struct {
	Accelerator string `mapstructure:"accelerator"`
	ID          string `mapstructure:"id"`
}

// OutputConfig holds the shared output root for per-request namespaces.
type OutputConfig struct {
	Root string `mapstructure:"root"`
	// SweepInterval is how often abandoned namespaces are removed. Zero disables the sweeper.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxAge        time.Duration `mapstructure:"max_age"`
}

// OptionsConfig controls how request options are normalized.
type OptionsConfig struct {
	// StrictFlags parses flag values ("0", "false", "no") instead of using
	// plain truthiness, where any non-empty string is true.
	StrictFlags bool `mapstructure:"strict_flags"`
}

// EngineConfig holds settings for the external parsing engine.
type EngineConfig struct {
	Provider string `mapstructure:"provider"`
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
	Binary   string `mapstructure:"binary"`
	// Timeout bounds a single parse. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
	// RequestTimeout bounds each HTTP call of the remote provider. Zero disables it.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig holds bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// Enabled reports whether bearer token auth is required.
func (a *AuthConfig) Enabled() bool {
	return a.Secret != ""
}

// RetentionConfig controls copying archives to object storage.
type RetentionConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// DBConfig holds PostgreSQL connection settings for the request journal.
type DBConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":         "server.port",
	"workers":      "server.workers",
	"accelerator":  "device.accelerator",
	"device":       "device.id",
	"output-dir":   "output.root",
	"engine":       "engine.provider",
	"engine-url":   "engine.endpoint",
	"engine-bin":   "engine.binary",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"strict-flags": "options.strict_flags",
}

// RegisterFlags defines the command-line flags Load understands on fs. Flags
// left unset fall through to the environment, config file and defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (yaml, toml or json)")
	fs.String("port", "", "listen address or port (default :8999)")
	fs.Int("workers", 0, "concurrent parses on the device (default 1)")
	fs.String("accelerator", "", "accelerator kind: gpu, cuda, cpu or mps (default gpu)")
	fs.String("device", "", "device id, e.g. auto, 0 or cuda:1 (default auto)")
	fs.String("output-dir", "", "shared output root (default ./tmp)")
	fs.String("engine", "", "engine provider: remote or command (default remote)")
	fs.String("engine-url", "", "remote engine endpoint")
	fs.String("engine-bin", "", "command engine binary")
	fs.String("log-level", "", "log level (default info)")
	fs.String("log-format", "", "log format: console or json (default console)")
	fs.Bool("strict-flags", true, "parse output flag strings instead of plain truthiness")
}

// Load reads configuration from defaults, an optional config file, environment
// variables with the DOCPARSE_ prefix and, when fs is non-nil, command-line flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8999")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.workers", 1)
	v.SetDefault("server.max_upload_mb", 200)
	v.SetDefault("server.cors_origins", []string{})

	// Device defaults
	v.SetDefault("device.accelerator", "gpu")
	v.SetDefault("device.id", "auto")

	v.SetDefault("output.root", "./tmp")
	v.SetDefault("output.sweep_interval", "10m")
	v.SetDefault("output.max_age", "1h")
	v.SetDefault("options.strict_flags", true)

	// Engine defaults
	v.SetDefault("engine.provider", "remote")
	v.SetDefault("engine.endpoint", "http://127.0.0.1:9000")
	v.SetDefault("engine.token", "")
	v.SetDefault("engine.binary", "docparse-engine")
	v.SetDefault("engine.timeout", "0s")
	v.SetDefault("engine.request_timeout", "0s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Auth defaults
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "docparse")

	// Retention defaults
	v.SetDefault("retention.enabled", false)
	v.SetDefault("retention.prefix", "archives")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docparse-archives")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docparse")
	v.SetDefault("db.password", "docparse_secret")
	v.SetDefault("db.name", "docparse_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 5)
	v.SetDefault("db.max_idle", 2)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "DOCPARSE_SERVER_PORT",
		"server.read_timeout":    "DOCPARSE_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "DOCPARSE_SERVER_WRITE_TIMEOUT",
		"server.environment":     "DOCPARSE_SERVER_ENVIRONMENT",
		"server.workers":         "DOCPARSE_SERVER_WORKERS",
		"server.max_upload_mb":   "DOCPARSE_SERVER_MAX_UPLOAD_MB",
		"server.cors_origins":    "DOCPARSE_SERVER_CORS_ORIGINS",
		"device.accelerator":     "DOCPARSE_DEVICE_ACCELERATOR",
		"device.id":              "DOCPARSE_DEVICE_ID",
		"output.root":            "DOCPARSE_OUTPUT_ROOT",
		"output.sweep_interval":  "DOCPARSE_OUTPUT_SWEEP_INTERVAL",
		"output.max_age":         "DOCPARSE_OUTPUT_MAX_AGE",
		"options.strict_flags":   "DOCPARSE_OPTIONS_STRICT_FLAGS",
		"engine.provider":        "DOCPARSE_ENGINE_PROVIDER",
		"engine.endpoint":        "DOCPARSE_ENGINE_ENDPOINT",
		"engine.token":           "DOCPARSE_ENGINE_TOKEN",
		"engine.binary":          "DOCPARSE_ENGINE_BINARY",
		"engine.timeout":         "DOCPARSE_ENGINE_TIMEOUT",
		"engine.request_timeout": "DOCPARSE_ENGINE_REQUEST_TIMEOUT",
		"log.level":              "DOCPARSE_LOG_LEVEL",
		"log.format":             "DOCPARSE_LOG_FORMAT",
		"auth.secret":            "DOCPARSE_AUTH_SECRET",
		"auth.issuer":            "DOCPARSE_AUTH_ISSUER",
		"retention.enabled":      "DOCPARSE_RETENTION_ENABLED",
		"retention.prefix":       "DOCPARSE_RETENTION_PREFIX",
		"s3.region":              "DOCPARSE_S3_REGION",
		"s3.bucket":              "DOCPARSE_S3_BUCKET",
		"s3.endpoint":            "DOCPARSE_S3_ENDPOINT",
		"s3.access_key":          "DOCPARSE_S3_ACCESS_KEY",
		"s3.secret_key":          "DOCPARSE_S3_SECRET_KEY",
		"s3.presign_expiry":      "DOCPARSE_S3_PRESIGN_EXPIRY",
		"db.enabled":             "DOCPARSE_DB_ENABLED",
		"db.auto_migrate":        "DOCPARSE_DB_AUTO_MIGRATE",
		"db.host":                "DOCPARSE_DB_HOST",
		"db.port":                "DOCPARSE_DB_PORT",
		"db.user":                "DOCPARSE_DB_USER",
		"db.password":            "DOCPARSE_DB_PASSWORD",
		"db.name":                "DOCPARSE_DB_NAME",
		"db.sslmode":             "DOCPARSE_DB_SSLMODE",
		"db.max_open":            "DOCPARSE_DB_MAX_OPEN",
		"db.max_idle":            "DOCPARSE_DB_MAX_IDLE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it if DOCPARSE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCPARSE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}
	if serverPort != "" && !strings.Contains(serverPort, ":") {
		serverPort = ":" + serverPort
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		Workers:      v.GetInt("server.workers"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
		CORSOrigins:  v.GetStringSlice("server.cors_origins"),
	}
	cfg.Device = DeviceConfig{
		Accelerator: v.GetString("device.accelerator"),
		ID:          v.GetString("device.id"),
	}
	cfg.Output = OutputConfig{
		Root:          v.GetString("output.root"),
		SweepInterval: v.GetDuration("output.sweep_interval"),
		MaxAge:        v.GetDuration("output.max_age"),
	}
	cfg.Options = OptionsConfig{
		StrictFlags: v.GetBool("options.strict_flags"),
	}
	cfg.Engine = EngineConfig{
		Provider:       v.GetString("engine.provider"),
		Endpoint:       v.GetString("engine.endpoint"),
		Token:          v.GetString("engine.token"),
		Binary:         v.GetString("engine.binary"),
		Timeout:        v.GetDuration("engine.timeout"),
		RequestTimeout: v.GetDuration("engine.request_timeout"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Auth = AuthConfig{
		Secret: v.GetString("auth.secret"),
		Issuer: v.GetString("auth.issuer"),
	}
	cfg.Retention = RetentionConfig{
		Enabled: v.GetBool("retention.enabled"),
		Prefix:  v.GetString("retention.prefix"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.DB = DBConfig{
		Enabled:     v.GetBool("db.enabled"),
		AutoMigrate: v.GetBool("db.auto_migrate"),
		Host:        v.GetString("db.host"),
		Port:        v.GetInt("db.port"),
		User:        v.GetString("db.user"),
		Password:    v.GetString("db.password"),
		Name:        v.GetString("db.name"),
		SSLMode:     v.GetString("db.sslmode"),
		MaxOpen:     v.GetInt("db.max_open"),
		MaxIdle:     v.GetInt("db.max_idle"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Output.Root) == "" {
		errs = append(errs, errors.New("output.root must not be empty"))
	}
	if c.Output.SweepInterval > 0 && c.Output.MaxAge <= 0 {
		errs = append(errs, errors.New("output.max_age must be positive when the sweeper is enabled"))
	}
	if c.Server.Workers < 1 {
		errs = append(errs, fmt.Errorf("server.workers must be at least 1, got %d", c.Server.Workers))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}
	switch c.Engine.Provider {
	case "remote":
		if c.Engine.Endpoint == "" {
			errs = append(errs, errors.New("engine.endpoint is required for the remote engine"))
		}
	case "command":
		if c.Engine.Binary == "" {
			errs = append(errs, errors.New("engine.binary is required for the command engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown engine provider: %q", c.Engine.Provider))
	}
	if c.Retention.Enabled && c.S3.Bucket == "" {
		errs = append(errs, errors.New("s3.bucket is required when retention is enabled"))
	}
	return errors.Join(errs...)
}
