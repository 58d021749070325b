package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SpoolBackendFile   = "file"
	SpoolBackendMemory = "memory"
	SpoolBackendS3     = "s3"

	defaultJWTSecret = "change-me"
	maxSheetNameLen  = 31
)

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Export   ExportConfig   `yaml:"export"`
	Spool    SpoolConfig    `yaml:"spool"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Rate     RateConfig     `yaml:"rate"`
	S3       S3Config       `yaml:"s3"`
	Auth     AuthConfig     `yaml:"auth"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ExportConfig struct {
	SheetName        string   `yaml:"sheet_name"`
	PreferredColumns []string `yaml:"preferred_columns"`
	MaxRecords       int      `yaml:"max_records"`
	MaxBodyBytes     int64    `yaml:"max_body_bytes"`
}

type SpoolConfig struct {
	Backend         string        `yaml:"backend"`
	Dir             string        `yaml:"dir"`
	Prefix          string        `yaml:"prefix"`
	Retention       time.Duration `yaml:"retention"`
	CleanupSchedule string        `yaml:"cleanup_schedule"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateConfig struct {
	PerMinute int `yaml:"per_minute"`
	Per10Sec  int `yaml:"per_10sec"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         "0.0.0.0:8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Export: ExportConfig{
			SheetName:    "Data Export",
			MaxRecords:   0,
			MaxBodyBytes: 32 << 20,
		},
		Spool: SpoolConfig{
			Backend:         SpoolBackendFile,
			Dir:             "",
			Prefix:          "export-",
			Retention:       time.Hour,
			CleanupSchedule: "*/15 * * * *",
		},
		Redis: RedisConfig{
			DB: 0,
		},
		Rate: RateConfig{
			PerMinute: 60,
			Per10Sec:  15,
		},
		S3: S3Config{
			Endpoint:  "localhost:9000",
			AccessKey: "minio",
			SecretKey: "minio123",
			Bucket:    "exports-spool",
			UseSSL:    false,
		},
		Auth: AuthConfig{
			JWTTTL: 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "json_to_excel",
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

func (c Config) Validate() error {
	switch c.Spool.Backend {
	case SpoolBackendFile, SpoolBackendMemory:
	case SpoolBackendS3:
		if strings.TrimSpace(c.S3.Bucket) == "" {
			return fmt.Errorf("s3.bucket is required for spool backend %q", SpoolBackendS3)
		}
	default:
		return fmt.Errorf("unknown spool backend %q", c.Spool.Backend)
	}

	name := strings.TrimSpace(c.Export.SheetName)
	if name == "" || len([]rune(name)) > maxSheetNameLen || strings.ContainsAny(name, `:\/?*[]`) {
		return fmt.Errorf("invalid export.sheet_name %q", c.Export.SheetName)
	}
	if c.Export.MaxRecords < 0 {
		return fmt.Errorf("export.max_records must not be negative")
	}
	if c.Export.MaxBodyBytes <= 0 {
		return fmt.Errorf("export.max_body_bytes must be positive")
	}
	if c.Rate.PerMinute < 0 || c.Rate.Per10Sec < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("auth.jwt_secret must be changed in production")
	}

	return nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	host, port := os.Getenv("HOST"), os.Getenv("PORT")
	if host != "" || port != "" {
		defHost, defPort, err := net.SplitHostPort(cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("parse http addr %q: %w", cfg.HTTP.Addr, err)
		}
		if host == "" {
			host = defHost
		}
		if port == "" {
			port = defPort
		}
		cfg.HTTP.Addr = net.JoinHostPort(host, port)
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if err := overrideInt("EXPORT_MAX_RECORDS", &cfg.Export.MaxRecords); err != nil {
		return err
	}
	if err := overrideInt64("EXPORT_MAX_BODY_BYTES", &cfg.Export.MaxBodyBytes); err != nil {
		return err
	}

	if v := os.Getenv("SPOOL_BACKEND"); v != "" {
		cfg.Spool.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SPOOL_DIR"); v != "" {
		cfg.Spool.Dir = v
	}
	if err := overrideDuration("SPOOL_RETENTION", &cfg.Spool.Retention); err != nil {
		return err
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}
	if err := overrideInt("RATE_PER_MINUTE", &cfg.Rate.PerMinute); err != nil {
		return err
	}
	if err := overrideInt("RATE_PER_10SEC", &cfg.Rate.Per10Sec); err != nil {
		return err
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.S3.SecretKey = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if err := overrideBool("S3_USE_SSL", &cfg.S3.UseSSL); err != nil {
		return err
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overrideDuration("JWT_TTL", &cfg.Auth.JWTTTL); err != nil {
		return err
	}

	if err := overrideBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideInt64(key string, target *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s int64: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
