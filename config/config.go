package config

import (
	"reflect"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"

	"equitystek/server/internal/valuation"
)

type Config struct {
	Server struct {
		Port        string   `env:"SERVER_PORT" envDefault:"5250"`
		CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/equitystek.db"`
	}

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	PlansFile string `env:"PLANS_FILE" envDefault:"config/plans.yaml"`

	// Valuation calibration; see valuation.DefaultRates for the reference values
	Valuation struct {
		RatePerSqft      decimal.Decimal `env:"VALUATION_RATE_PER_SQFT" envDefault:"200"`
		BedroomValue     decimal.Decimal `env:"VALUATION_BEDROOM_VALUE" envDefault:"15000"`
		BathroomValue    decimal.Decimal `env:"VALUATION_BATHROOM_VALUE" envDefault:"10000"`
		ComparableOffset decimal.Decimal `env:"VALUATION_COMPARABLE_OFFSET" envDefault:"15000"`
		AltRatePerSqft   decimal.Decimal `env:"VALUATION_ALT_RATE_PER_SQFT" envDefault:"195"`
		AutomatedOffset  decimal.Decimal `env:"VALUATION_AUTOMATED_OFFSET" envDefault:"20000"`
		CostOffset       decimal.Decimal `env:"VALUATION_COST_OFFSET" envDefault:"10000"`
		IncomeOffset     decimal.Decimal `env:"VALUATION_INCOME_OFFSET" envDefault:"5000"`
	}

	Revaluation struct {
		// Maximum number of batches waiting in the queue
		QueueSize int `env:"REVALUATION_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch consumers
		Workers int `env:"REVALUATION_WORKERS" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"REVALUATION_MAX_RETRIES" envDefault:"3"`

		// Delay between retries
		RetryDelay time.Duration `env:"REVALUATION_RETRY_DELAY" envDefault:"500ms"`

		// How often every property is re-enqueued; zero disables the sweep
		SweepInterval time.Duration `env:"REVALUATION_SWEEP_INTERVAL" envDefault:"1h"`

		// Property ids per sweep batch
		BatchSize int `env:"REVALUATION_BATCH_SIZE" envDefault:"50"`
	}

	Portfolio struct {
		Concurrency int `env:"PORTFOLIO_CONCURRENCY" envDefault:"8"`
	}

	Geocoding struct {
		Enabled     bool          `env:"GEOCODING_ENABLED" envDefault:"false"`
		BaseURL     string        `env:"GEOCODING_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
		UserAgent   string        `env:"GEOCODING_USER_AGENT" envDefault:"Equitystek Portfolio Tracker/1.0"`
		MinInterval time.Duration `env:"GEOCODING_MIN_INTERVAL" envDefault:"1s"`
	}
}

var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(decimal.Decimal{}): func(v string) (interface{}, error) {
		return decimal.NewFromString(v)
	},
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithFuncs(cfg, parsers); err != nil {
		return nil, err
	}
	if err := cfg.ValuationRates().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValuationRates converts the valuation settings into calculator rates.
func (c *Config) ValuationRates() valuation.Rates {
	return valuation.Rates{
		RatePerSqft:      c.Valuation.RatePerSqft,
		BedroomValue:     c.Valuation.BedroomValue,
		BathroomValue:    c.Valuation.BathroomValue,
		ComparableOffset: c.Valuation.ComparableOffset,
		AltRatePerSqft:   c.Valuation.AltRatePerSqft,
		AutomatedOffset:  c.Valuation.AutomatedOffset,
		CostOffset:       c.Valuation.CostOffset,
		IncomeOffset:     c.Valuation.IncomeOffset,
	}
}
