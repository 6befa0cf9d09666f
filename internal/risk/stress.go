package risk

// Synthetic shock constants applied by the stress simulator.
const (
	marketCrashShock     = -0.20
	liquidityCrisisShock = -0.15
	highVolatilityShock  = 2.0
	correlationShock     = 0.5
)

// StressResult reports the loss profile of one stressed return series.
type StressResult struct {
	VaR95       float64 `json:"var_95"`
	CVaR95      float64 `json:"cvar_95"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Shock       float64 `json:"shock"`
}

// stressLosses recomputes the loss metrics on a stressed series.
func stressLosses(returns []float64, shock float64) StressResult {
	return StressResult{
		VaR95:       ValueAtRisk(returns, confidence95),
		CVaR95:      ConditionalVaR(returns, confidence95),
		MaxDrawdown: MaxDrawdown(returns),
		Shock:       shock,
	}
}

// shockedCopy returns the series with the one-time shock appended as an
// additional observation. The input is never modified.
func shockedCopy(returns []float64, shock float64) []float64 {
	out := make([]float64, len(returns)+1)
	copy(out, returns)
	out[len(returns)] = shock
	return out
}

// scaledVolatilityCopy rescales the series about its mean so the standard
// deviation grows by the given factor.
func scaledVolatilityCopy(returns []float64, factor float64) []float64 {
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = mean + factor*(r-mean)
	}
	return out
}

// decorrelatedCopy attenuates the systematic component of the asset series:
// the beta-driven co-movement with the market is scaled down while the
// idiosyncratic residual is kept intact.
func decorrelatedCopy(pair AlignedPair, factor float64) []float64 {
	beta := Beta(pair.Asset, pair.Bench)
	out := make([]float64, pair.Len())
	for i := range pair.Asset {
		systematic := beta * pair.Bench[i]
		out[i] = factor*systematic + (pair.Asset[i] - systematic)
	}
	return out
}

// runStressTests applies the four synthetic scenarios to the aligned series
// and reports each scenario's stressed loss metrics. Every scenario works
// on a derived copy.
func runStressTests(pair AlignedPair) (map[string]StressResult, error) {
	if pair.Len() < 2 {
		return nil, ErrInsufficientData
	}
	returns := pair.Asset

	return map[string]StressResult{
		"market_crash":          stressLosses(shockedCopy(returns, marketCrashShock), marketCrashShock),
		"liquidity_crisis":      stressLosses(shockedCopy(returns, liquidityCrisisShock), liquidityCrisisShock),
		"high_volatility":       stressLosses(scaledVolatilityCopy(returns, highVolatilityShock), highVolatilityShock),
		"correlation_breakdown": stressLosses(decorrelatedCopy(pair, correlationShock), correlationShock),
	}, nil
}
