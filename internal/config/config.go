package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Images  ImagesConfig  `mapstructure:"images"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Billing BillingConfig `mapstructure:"billing"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ImagesConfig struct {
	Dir string `mapstructure:"dir"`
}

type OCRConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type BillingConfig struct {
	FeePerInterval  int64 `mapstructure:"fee_per_interval"`
	IntervalMinutes int   `mapstructure:"interval_minutes"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml (optional) and PARKLOT_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.dsn", "host=localhost user=parklot password=parklot dbname=parklot port=5432 sslmode=disable")
	v.SetDefault("images.dir", "data/captured_images")
	v.SetDefault("ocr.endpoint", "http://localhost:8090/v1/recognize")
	v.SetDefault("ocr.timeout", 5*time.Second)
	v.SetDefault("billing.fee_per_interval", 100)
	v.SetDefault("billing.interval_minutes", 10)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("PARKLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Billing.FeePerInterval <= 0 || cfg.Billing.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("billing.fee_per_interval and billing.interval_minutes must be positive")
	}

	return &cfg, nil
}
