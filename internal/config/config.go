package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/d1ma11/deposit-service/internal/usecase/rate"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

const (
	CodeStoreRedis  = "redis"
	CodeStoreMemory = "memory"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB" envDefault:"deposits"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"deposits"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"deposits"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	IdempTTLSecs int `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	AccountServiceURL  string        `env:"ACCOUNT_SERVICE_URL" envDefault:"http://account-service:8080"`
	CustomerServiceURL string        `env:"CUSTOMER_SERVICE_URL" envDefault:"http://customer-service:8080"`
	GatewayTimeout     time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"5s"`

	BaseRate     decimal.Decimal `env:"DEPOSIT_BASE_RATE" envDefault:"5.00"`
	RefillPolicy string          `env:"REFILL_RATE_POLICY" envDefault:"compound"`

	CodeTTL   time.Duration `env:"CONFIRMATION_CODE_TTL" envDefault:"5m"`
	CodeStore string        `env:"CODE_STORE" envDefault:"redis"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	DBLogLevel     string `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure ports are numeric
	if _, err := strconv.ParseUint(c.MySQLPort, 10, 16); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := strconv.ParseUint(c.AppPort, 10, 16); err != nil {
		return fmt.Errorf("invalid APP_PORT %q: %w", c.AppPort, err)
	}
	if c.AccountServiceURL == "" || c.CustomerServiceURL == "" {
		return errors.New("missing ACCOUNT_SERVICE_URL or CUSTOMER_SERVICE_URL")
	}
	if c.BaseRate.IsNegative() {
		return fmt.Errorf("DEPOSIT_BASE_RATE must not be negative, got %s", c.BaseRate)
	}
	switch c.RefillPolicy {
	case rate.PolicyCompound, rate.PolicyRecompute:
	default:
		return fmt.Errorf("unknown REFILL_RATE_POLICY %q", c.RefillPolicy)
	}
	switch c.CodeStore {
	case CodeStoreRedis, CodeStoreMemory:
	default:
		return fmt.Errorf("unknown CODE_STORE %q", c.CodeStore)
	}
	if c.CodeTTL <= 0 {
		return errors.New("CONFIRMATION_CODE_TTL must be positive")
	}
	return nil
}

func (c *Config) Addr() string { return ":" + c.AppPort }

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps status timestamps ordered
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
