package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		App: AppConfig{Name: "atom-settlement", LogLevel: "info"},
		Engine: EngineConfig{
			MinProfitBps:        10,
			MaxResourceCostUSD:  50,
			SubmitRatePerMinute: 120,
		},
		Lending: LendingConfig{
			FeeBps:     9,
			MaxLoanUSD: 10_000_000,
			PricesUSD:  map[string]float64{"WETH": 2000},
		},
		Ledger: LedgerConfig{Store: "memory"},
		Admin:  AdminConfig{OperatorToken: "secret"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero_min_profit",
			mutate:  func(c *Config) { c.Engine.MinProfitBps = 0 },
			wantErr: "min_profit_bps",
		},
		{
			name:    "min_profit_over_cap",
			mutate:  func(c *Config) { c.Engine.MinProfitBps = 1001 },
			wantErr: "min_profit_bps",
		},
		{
			name:    "negative_resource_ceiling",
			mutate:  func(c *Config) { c.Engine.MaxResourceCostUSD = -1 },
			wantErr: "max_resource_cost_usd",
		},
		{
			name:    "loan_fee_over_full",
			mutate:  func(c *Config) { c.Lending.FeeBps = 10_001 },
			wantErr: "fee_bps",
		},
		{
			name:    "zero_loan_ceiling",
			mutate:  func(c *Config) { c.Lending.MaxLoanUSD = 0 },
			wantErr: "max_loan_usd",
		},
		{
			name:    "non_positive_asset_price",
			mutate:  func(c *Config) { c.Lending.PricesUSD["WETH"] = 0 },
			wantErr: "prices_usd",
		},
		{
			name:    "unknown_ledger_store",
			mutate:  func(c *Config) { c.Ledger.Store = "redis" },
			wantErr: "ledger.store",
		},
		{
			name: "postgres_without_dsn",
			mutate: func(c *Config) {
				c.Ledger.Store = "postgres"
				c.Ledger.PostgresDSN = ""
			},
			wantErr: "postgres_dsn",
		},
		{
			name:    "missing_operator_token",
			mutate:  func(c *Config) { c.Admin.OperatorToken = "" },
			wantErr: "operator_token",
		},
		{
			name: "pool_without_id",
			mutate: func(c *Config) {
				c.Venues.Pools = []PoolConfig{{
					Kind:     "constant_product",
					Assets:   []string{"WETH", "USDC"},
					Reserves: []string{"100", "200000"},
				}}
			},
			wantErr: "id",
		},
		{
			name: "pool_reserves_mismatch",
			mutate: func(c *Config) {
				c.Venues.Pools = []PoolConfig{{
					ID:       "p1",
					Kind:     "constant_product",
					Assets:   []string{"WETH", "USDC"},
					Reserves: []string{"100"},
				}}
			},
			wantErr: "reserves",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ATOM_OPERATOR_TOKEN", "test-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.MinProfitBps != 10 {
		t.Errorf("min_profit_bps = %d, want default 10", cfg.Engine.MinProfitBps)
	}
	if cfg.Lending.FeeBps != 9 {
		t.Errorf("lending fee = %d bps, want default 9", cfg.Lending.FeeBps)
	}
	if cfg.Ledger.Store != "memory" {
		t.Errorf("ledger store = %q, want memory", cfg.Ledger.Store)
	}
	if cfg.Admin.OperatorToken != "test-token" {
		t.Errorf("operator token not read from environment")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ATOM_OPERATOR_TOKEN", "test-token")
	t.Setenv("ATOM_MIN_PROFIT_BPS", "25")
	t.Setenv("ATOM_LOAN_FEE_BPS", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.MinProfitBps != 25 {
		t.Errorf("min_profit_bps = %d, want 25", cfg.Engine.MinProfitBps)
	}
	if cfg.Lending.FeeBps != 5 {
		t.Errorf("lending fee = %d bps, want 5", cfg.Lending.FeeBps)
	}
}
