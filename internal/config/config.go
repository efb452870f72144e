// Package config loads process configuration from the environment. Ported from
// ws/config.go's env-tag/defaults/validate pattern, trimmed to this gateway's
// actual surface: two required upstream URLs (spec §6) plus the ambient
// listen/metrics/logging knobs the teacher always carries.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every environment-derived setting the gateway needs at startup.
type Config struct {
	// Upstream Solana endpoints (spec §6 — both required, non-empty).
	SolanaWSURL  string `env:"SOLANA_WS_URL"`
	SolanaRPCURL string `env:"SOLANA_RPC_URL"`

	// Off-chain metadata/price service.
	JupiterBaseURL string `env:"JUPITER_BASE_URL" envDefault:"https://lite-api.jup.ag"`

	// gRPC front door.
	Addr string `env:"GATEWAY_ADDR" envDefault:":50051"`

	// Prometheus scrape endpoint.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// Logging.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from a .env file (optional) and the process
// environment, applying defaults and validating the result. Priority: env vars >
// .env file > defaults.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("no .env file found (using environment variables only)")
		}
	} else if logger != nil {
		logger.Info().Msg("loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks required fields and enum-constrained values.
func (c *Config) Validate() error {
	if c.SolanaWSURL == "" {
		return fmt.Errorf("SOLANA_WS_URL is required")
	}
	if c.SolanaRPCURL == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}

	validLogFormats := map[string]bool{"json": true, "pretty": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, pretty (got: %s)", c.LogFormat)
	}

	return nil
}

// Print writes a human-readable configuration dump to stdout, for local runs.
func (c *Config) Print() {
	fmt.Println("=== Gateway Configuration ===")
	fmt.Printf("Environment:     %s\n", c.Environment)
	fmt.Printf("Addr:            %s\n", c.Addr)
	fmt.Printf("Metrics Addr:    %s\n", c.MetricsAddr)
	fmt.Printf("Solana WS URL:   %s\n", c.SolanaWSURL)
	fmt.Printf("Solana RPC URL:  %s\n", c.SolanaRPCURL)
	fmt.Printf("Jupiter Base URL:%s\n", c.JupiterBaseURL)
	fmt.Printf("Log Level:       %s\n", c.LogLevel)
	fmt.Printf("Log Format:      %s\n", c.LogFormat)
	fmt.Println("=============================")
}

// LogConfig emits the same information as Print, structured for Loki-style
// ingestion.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("environment", c.Environment).
		Str("addr", c.Addr).
		Str("metrics_addr", c.MetricsAddr).
		Str("solana_ws_url", c.SolanaWSURL).
		Str("solana_rpc_url", c.SolanaRPCURL).
		Str("jupiter_base_url", c.JupiterBaseURL).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Msg("gateway configuration loaded")
}
