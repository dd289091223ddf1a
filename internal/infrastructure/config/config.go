package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Lending LendingConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=lending_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type AuthConfig struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	BcryptCost         int           `env:"BCRYPT_COST,       default=10"`
}

// LendingConfig parameterizes the underwriting policy and loan terms.
// ANNUAL_INTEREST_RATE is a decimal fraction; SAFE_EXPENSE_PERCENT is a
// whole percentage.
type LendingConfig struct {
	MinAge                int     `env:"MIN_AGE,                 default=20"`
	MinMonthlySalary      float64 `env:"MIN_SALARY,              default=25000"`
	AnnualInterestRate    float64 `env:"ANNUAL_INTEREST_RATE,    default=0.12"`
	SafeExpensePercent    float64 `env:"SAFE_EXPENSE_PERCENT,    default=35"`
	RecommendTenureMonths int     `env:"RECOMMEND_TENURE_MONTHS, default=12"`
}

// SafeExpenseFraction converts the configured percentage to a fraction.
func (c LendingConfig) SafeExpenseFraction() float64 {
	return c.SafeExpensePercent / 100
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
