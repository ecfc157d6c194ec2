package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Telegram   Telegram
	API        API
	Jobs       Jobs
	Pagination Pagination
	Trading    Trading
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN,notEmpty"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type API struct {
	Debug      bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"5s"`
	TradingApi TradingApi
}

type TradingApi struct {
	Url string `env:"TRADING_API_URL" envDefault:"http://127.0.0.1:5000"`
}

// Jobs holds the independent poll intervals of the dashboard.
type Jobs struct {
	ClockInterval        time.Duration `env:"CLOCK_JOB_INTERVAL" envDefault:"1s"`
	TradingPhaseInterval time.Duration `env:"TRADING_PHASE_JOB_INTERVAL" envDefault:"5s"`
	QuoteInterval        time.Duration `env:"QUOTE_JOB_INTERVAL" envDefault:"5s"`
	PortfolioInterval    time.Duration `env:"PORTFOLIO_JOB_INTERVAL" envDefault:"10s"`
	OrdersInterval       time.Duration `env:"ORDERS_JOB_INTERVAL" envDefault:"10s"`
	HistoryInterval      time.Duration `env:"HISTORY_JOB_INTERVAL" envDefault:"10s"`
	PublishInterval      time.Duration `env:"PUBLISH_JOB_INTERVAL" envDefault:"2s"`
}

// MaxRowsPerPage is the largest page that still renders whole inside one
// Telegram message.
const MaxRowsPerPage = 25

type Pagination struct {
	PositionsPerPage int `env:"POSITIONS_PER_PAGE" envDefault:"20"`
	OrdersPerPage    int `env:"ORDERS_PER_PAGE" envDefault:"20"`
	HistoryPerPage   int `env:"HISTORY_PER_PAGE" envDefault:"20"`
}

func (p Pagination) validate() error {
	sizes := []struct {
		name string
		size int
	}{
		{name: "POSITIONS_PER_PAGE", size: p.PositionsPerPage},
		{name: "ORDERS_PER_PAGE", size: p.OrdersPerPage},
		{name: "HISTORY_PER_PAGE", size: p.HistoryPerPage},
	}
	for _, s := range sizes {
		if s.size < 1 || s.size > MaxRowsPerPage {
			return fmt.Errorf("%s must be between 1 and %d, got %d", s.name, MaxRowsPerPage, s.size)
		}
	}
	return nil
}

type Trading struct {
	LotSize      int      `env:"LOT_SIZE" envDefault:"100"`
	DefaultStock string   `env:"DEFAULT_STOCK" envDefault:"sh600519"`
	SampleStocks []string `env:"SAMPLE_STOCKS" envDefault:"sh600519,sz000001,sh601318,sz300750" envSeparator:","`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	if err := cfg.Pagination.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
