package risk

import "fmt"

// Defaults for the analysis parameters.
const (
	DefaultRiskFreeRateAnnual = 0.03
	DefaultMarketProxySymbol  = "SPY"
	DefaultLookbackDays       = 252
	DefaultRollingCorrWindow  = 30
	DefaultRollingVolWindow   = 20
)

// DefaultFactorSymbols is the macro-factor universe used for correlation and
// factor-exposure analysis: market, long bonds, gold, dollar index.
func DefaultFactorSymbols() []string {
	return []string{"SPY", "TLT", "GLD", "DXY"}
}

// Config carries the parameters of one analysis. It is passed explicitly to
// NewAnalyzer rather than held as process-wide state so callers and tests
// can vary it per instance.
type Config struct {
	// RiskFreeRateAnnual is the annual risk-free rate used for excess
	// returns (Sharpe, Sortino, Treynor).
	RiskFreeRateAnnual float64 `json:"risk_free_rate_annual" yaml:"risk_free_rate_annual" mapstructure:"risk_free_rate_annual"`

	// MarketProxySymbol is the benchmark used for beta, decomposition and
	// market correlation.
	MarketProxySymbol string `json:"market_proxy_symbol" yaml:"market_proxy_symbol" mapstructure:"market_proxy_symbol"`

	// LookbackDays bounds the trailing window of daily history fetched for
	// single-asset analysis.
	LookbackDays int `json:"lookback_days" yaml:"lookback_days" mapstructure:"lookback_days"`

	// FactorSymbols is the proxy universe for the correlation analyzer.
	FactorSymbols []string `json:"factor_symbols" yaml:"factor_symbols" mapstructure:"factor_symbols"`

	// RollingCorrWindow is the window, in trading days, of the rolling
	// correlation series.
	RollingCorrWindow int `json:"rolling_corr_window" yaml:"rolling_corr_window" mapstructure:"rolling_corr_window"`

	// RollingVolWindow is the window of the rolling volatility series; it is
	// capped at the sample length.
	RollingVolWindow int `json:"rolling_vol_window" yaml:"rolling_vol_window" mapstructure:"rolling_vol_window"`
}

// DefaultConfig returns the reference analysis parameters.
func DefaultConfig() Config {
	return Config{
		RiskFreeRateAnnual: DefaultRiskFreeRateAnnual,
		MarketProxySymbol:  DefaultMarketProxySymbol,
		LookbackDays:       DefaultLookbackDays,
		FactorSymbols:      DefaultFactorSymbols(),
		RollingCorrWindow:  DefaultRollingCorrWindow,
		RollingVolWindow:   DefaultRollingVolWindow,
	}
}

// Validate checks the configuration for values the core cannot work with.
func (c Config) Validate() error {
	if c.MarketProxySymbol == "" {
		return fmt.Errorf("risk: market proxy symbol must not be empty")
	}
	if c.LookbackDays < 2 {
		return fmt.Errorf("risk: lookback days must be at least 2, got %d", c.LookbackDays)
	}
	if c.RiskFreeRateAnnual < 0 || c.RiskFreeRateAnnual >= 1 {
		return fmt.Errorf("risk: risk-free rate %v outside [0, 1)", c.RiskFreeRateAnnual)
	}
	if c.RollingCorrWindow < 2 {
		return fmt.Errorf("risk: rolling correlation window must be at least 2, got %d", c.RollingCorrWindow)
	}
	if c.RollingVolWindow < 2 {
		return fmt.Errorf("risk: rolling volatility window must be at least 2, got %d", c.RollingVolWindow)
	}
	for _, s := range c.FactorSymbols {
		if s == "" {
			return fmt.Errorf("risk: factor symbols must not be empty")
		}
	}
	return nil
}
