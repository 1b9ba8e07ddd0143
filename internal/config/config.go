package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default_secret"

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"file:admin?mode=memory&cache=shared"`
	DBSeed   bool   `env:"DB_SEED" envDefault:"true"`

	JWTSecret       string        `env:"JWT_SECRET" envDefault:"default_secret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"2h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	ReportDelay       time.Duration `env:"REPORT_DELAY" envDefault:"3s"`
	ReportFailureRate float64       `env:"REPORT_FAILURE_RATE" envDefault:"0.1"`
	ReportWorkers     int           `env:"REPORT_WORKERS" envDefault:"2"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

var AppConfig *Config

// LoadConfig 读取 .env 后解析环境变量，结果写入 AppConfig
func LoadConfig() error {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		return err
	}
	AppConfig = cfg

	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("警告: JWT_SECRET 使用默认值，请勿用于生产环境")
	}
	return nil
}

// Parse 只解析环境变量，不读 .env，也不修改全局配置
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ReportFailureRate < 0 || c.ReportFailureRate > 1 {
		return fmt.Errorf("REPORT_FAILURE_RATE must be within [0,1], got %v", c.ReportFailureRate)
	}
	if c.ReportWorkers < 1 {
		c.ReportWorkers = 1
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
}
