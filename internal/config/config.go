// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Lending   LendingConfig   `mapstructure:"lending"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Treasury  TreasuryConfig  `mapstructure:"treasury"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EngineConfig holds settlement engine parameters.
type EngineConfig struct {
	// MinProfitBps is the minimum profit threshold in basis points of
	// the borrowed principal. Must be in (0, 1000].
	MinProfitBps int64 `mapstructure:"min_profit_bps"`

	// MaxResourceCostUSD is the ceiling on resource (gas) cost per
	// attempt, in USD terms.
	MaxResourceCostUSD float64 `mapstructure:"max_resource_cost_usd"`

	// ResourceUnitPriceUSD is the fallback price of one resource unit
	// when the oracle has no fresher quote.
	ResourceUnitPriceUSD float64 `mapstructure:"resource_unit_price_usd"`

	// SubmitRatePerMinute bounds how many settlement requests are
	// admitted per minute. Excess submissions are rejected, not queued.
	SubmitRatePerMinute int `mapstructure:"submit_rate_per_minute"`

	// OracleCacheTTL is how long a resource unit price stays fresh.
	OracleCacheTTL time.Duration `mapstructure:"oracle_cache_ttl"`
}

// LendingConfig holds flash-loan source parameters.
type LendingConfig struct {
	// FeeBps is the flash-loan fee in basis points (Aave-style 9 bps).
	FeeBps int64 `mapstructure:"fee_bps"`

	// MaxLoanUSD caps a single draw to bound the blast radius of one
	// failed attempt.
	MaxLoanUSD float64 `mapstructure:"max_loan_usd"`

	// Liquidity seeds the vault: symbol -> human-readable amount.
	Liquidity map[string]string `mapstructure:"liquidity"`

	// PricesUSD values one whole unit of each borrowable asset for the
	// loan ceiling check: symbol -> USD price.
	PricesUSD map[string]float64 `mapstructure:"prices_usd"`
}

// PoolConfig describes one venue pool.
type PoolConfig struct {
	ID       string   `mapstructure:"id"`
	Kind     string   `mapstructure:"kind"` // constant_product, concentrated, weighted, stableswap
	Assets   []string `mapstructure:"assets"`
	Reserves []string `mapstructure:"reserves"` // human-readable, parallel to Assets
	FeeBps   int64    `mapstructure:"fee_bps"`
	Weights  []int64  `mapstructure:"weights"`       // weighted pools, normalized to sum 100
	AmpCoeff int64    `mapstructure:"amplification"` // stableswap pools
}

// VenuesConfig holds venue pool definitions.
type VenuesConfig struct {
	Pools []PoolConfig `mapstructure:"pools"`
}

// TreasuryConfig seeds the operating account.
type TreasuryConfig struct {
	// Balances: symbol -> human-readable amount.
	Balances map[string]string `mapstructure:"balances"`
}

// LedgerConfig holds trade ledger persistence and event streaming settings.
type LedgerConfig struct {
	// Store selects the backing store: "memory" or "postgres".
	Store string `mapstructure:"store"`

	PostgresDSN string `mapstructure:"postgres_dsn"`

	// StreamPort is the websocket event hub port. 0 disables the hub.
	StreamPort int `mapstructure:"stream_port"`
}

// AdminConfig holds the operator identity for the administrative surface.
type AdminConfig struct {
	// OperatorToken authenticates pause/unpause/config/withdraw calls.
	OperatorToken string `mapstructure:"operator_token"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// MaxResourceCostDecimal returns the resource cost ceiling as a decimal.
func (c *EngineConfig) MaxResourceCostDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxResourceCostUSD)
}

// ResourceUnitPriceDecimal returns the fallback unit price as a decimal.
func (c *EngineConfig) ResourceUnitPriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ResourceUnitPriceUSD)
}

// MaxLoanDecimal returns the loan ceiling as a decimal.
func (c *LendingConfig) MaxLoanDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxLoanUSD)
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ATOM")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ATOM_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ATOM_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ATOM_LOG_LEVEL", "LOG_LEVEL")

	// Engine
	v.BindEnv("engine.min_profit_bps", "ATOM_MIN_PROFIT_BPS")
	v.BindEnv("engine.max_resource_cost_usd", "ATOM_MAX_RESOURCE_COST_USD")
	v.BindEnv("engine.submit_rate_per_minute", "ATOM_SUBMIT_RATE")

	// Lending
	v.BindEnv("lending.fee_bps", "ATOM_LOAN_FEE_BPS")
	v.BindEnv("lending.max_loan_usd", "ATOM_MAX_LOAN_USD")

	// Ledger
	v.BindEnv("ledger.store", "ATOM_LEDGER_STORE")
	v.BindEnv("ledger.postgres_dsn", "ATOM_LEDGER_POSTGRES_DSN", "DATABASE_URL")
	v.BindEnv("ledger.stream_port", "ATOM_LEDGER_STREAM_PORT")

	// Admin
	v.BindEnv("admin.operator_token", "ATOM_OPERATOR_TOKEN")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ATOM_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ATOM_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ATOM_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "atom-settlement")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Engine defaults
	v.SetDefault("engine.min_profit_bps", 10)
	v.SetDefault("engine.max_resource_cost_usd", 50)
	v.SetDefault("engine.resource_unit_price_usd", 0.000000075) // 25 gwei at $3000/ETH
	v.SetDefault("engine.submit_rate_per_minute", 120)
	v.SetDefault("engine.oracle_cache_ttl", "12s")

	// Lending defaults (Aave-style 9 bps, $10M single-draw cap)
	v.SetDefault("lending.fee_bps", 9)
	v.SetDefault("lending.max_loan_usd", 10_000_000)

	// Ledger defaults
	v.SetDefault("ledger.store", "memory")
	v.SetDefault("ledger.stream_port", 0)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "atom-settlement")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.MinProfitBps <= 0 || c.Engine.MinProfitBps > 1000 {
		return fmt.Errorf("engine.min_profit_bps must be in (0, 1000], got %d", c.Engine.MinProfitBps)
	}
	if c.Engine.MaxResourceCostUSD < 0 {
		return fmt.Errorf("engine.max_resource_cost_usd cannot be negative")
	}
	if c.Lending.FeeBps < 0 || c.Lending.FeeBps > 10000 {
		return fmt.Errorf("lending.fee_bps must be in [0, 10000], got %d", c.Lending.FeeBps)
	}
	if c.Lending.MaxLoanUSD <= 0 {
		return fmt.Errorf("lending.max_loan_usd must be positive")
	}
	for symbol, price := range c.Lending.PricesUSD {
		if price <= 0 {
			return fmt.Errorf("lending.prices_usd[%s] must be positive", symbol)
		}
	}
	switch c.Ledger.Store {
	case "", "memory":
	case "postgres":
		if c.Ledger.PostgresDSN == "" {
			return fmt.Errorf("ledger.postgres_dsn is required when ledger.store is postgres")
		}
	default:
		return fmt.Errorf("unknown ledger.store %q", c.Ledger.Store)
	}
	if c.Admin.OperatorToken == "" {
		return fmt.Errorf("admin.operator_token is required")
	}
	for i, p := range c.Venues.Pools {
		if p.ID == "" {
			return fmt.Errorf("venues.pools[%d].id is required", i)
		}
		if len(p.Assets) < 2 {
			return fmt.Errorf("venues.pools[%d] needs at least two assets", i)
		}
		if len(p.Reserves) != len(p.Assets) {
			return fmt.Errorf("venues.pools[%d] reserves must match assets", i)
		}
	}
	return nil
}
