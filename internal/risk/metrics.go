package risk

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// tradingDaysPerYear is the annualization base for daily statistics.
const tradingDaysPerYear = 252

// Confidence levels reported by the tail and stress analyzers.
const (
	confidence95 = 0.95
	confidence99 = 0.99
)

// ErrInsufficientData marks a statistic that needs at least two aligned
// observations. The affected report section degrades to an empty result;
// the rest of the report proceeds.
var ErrInsufficientData = errors.New("risk: insufficient observations")

// percentile returns the p-th percentile (p in [0,100]) of the sample using
// linear interpolation between order statistics, matching the estimator the
// dashboard's historical numbers were produced with.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	s := make([]float64, n)
	copy(s, values)
	sort.Float64s(s)
	if n == 1 {
		return s[0]
	}

	idx := p / 100 * float64(n-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo < 0 {
		return s[0]
	}
	if hi >= n {
		return s[n-1]
	}
	if lo == hi {
		return s[lo]
	}
	frac := idx - float64(lo)
	return s[lo] + frac*(s[hi]-s[lo])
}

// Volatility is the annualized sample standard deviation of daily returns.
// Fewer than two observations yield 0.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}

// ValueAtRisk is the absolute value of the (1-confidence) lower empirical
// percentile of the return distribution, a positive loss magnitude.
func ValueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return math.Abs(percentile(returns, (1-confidence)*100))
}

// ConditionalVaR is the mean loss at or beyond the VaR threshold (expected
// shortfall), a positive magnitude. When no return reaches the threshold
// the result falls back to the VaR itself, keeping CVaR >= VaR.
func ConditionalVaR(returns []float64, confidence float64) float64 {
	v := ValueAtRisk(returns, confidence)
	var sum float64
	var n int
	for _, r := range returns {
		if r <= -v {
			sum += r
			n++
		}
	}
	if n == 0 {
		return v
	}
	return math.Abs(sum / float64(n))
}

// Beta is sample cov(asset, market) / sample var(market). A market with
// exactly zero variance yields 1.0, the documented degenerate-market
// fallback.
func Beta(asset, market []float64) float64 {
	if len(asset) < 2 || len(market) < 2 || len(asset) != len(market) {
		return 1.0
	}
	marketVar := stat.Variance(market, nil)
	if marketVar == 0 || math.IsNaN(marketVar) {
		return 1.0
	}
	return stat.Covariance(asset, market, nil) / marketVar
}

// SharpeRatio is the annualized mean excess return over total volatility.
// Excess return is r - riskFreeAnnual/252 per day. Zero return deviation
// yields 0, the documented fallback for a degenerate sample.
func SharpeRatio(returns []float64, riskFreeAnnual float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	daily := riskFreeAnnual / tradingDaysPerYear
	excess := stat.Mean(returns, nil) - daily
	return math.Sqrt(tradingDaysPerYear) * excess / sd
}

// SortinoRatio shares Sharpe's numerator but divides by downside deviation,
// the root mean square of the negative returns only. No negative returns
// yield 0.
func SortinoRatio(returns []float64, riskFreeAnnual float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var sumSq float64
	var n int
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	downside := math.Sqrt(sumSq / float64(n))
	if downside == 0 {
		return 0
	}
	daily := riskFreeAnnual / tradingDaysPerYear
	excess := stat.Mean(returns, nil) - daily
	return math.Sqrt(tradingDaysPerYear) * excess / downside
}

// drawdownCurve compounds returns into the wealth curve and reports each
// point's decline from the running maximum. Values are <= 0.
func drawdownCurve(returns []float64) []float64 {
	dd := make([]float64, len(returns))
	wealth := 1.0
	peak := math.Inf(-1)
	for i, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		dd[i] = wealth/peak - 1
	}
	return dd
}

// MaxDrawdown is the largest peak-to-trough decline of the compounded
// wealth curve, in [0, 1]. A monotonically non-decreasing curve yields 0.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	minDD := 0.0
	for _, d := range drawdownCurve(returns) {
		if d < minDD {
			minDD = d
		}
	}
	return math.Abs(minDD)
}

// DrawdownStats summarizes the drawdown curve: the maximum and average
// drawdown magnitudes, the days spent more than 5% below peak, and the days
// spent in major (10%+) drawdowns.
type DrawdownStats struct {
	MaxDrawdown  float64 `json:"max_drawdown"`
	AvgDrawdown  float64 `json:"avg_drawdown"`
	DrawdownDays int     `json:"drawdown_days"`
	RecoveryDays int     `json:"recovery_days"`
}

// AnalyzeDrawdowns computes DrawdownStats for a return series.
func AnalyzeDrawdowns(returns []float64) DrawdownStats {
	var out DrawdownStats
	if len(returns) == 0 {
		return out
	}
	var sum float64
	var negatives int
	for _, d := range drawdownCurve(returns) {
		if d < -out.MaxDrawdown {
			out.MaxDrawdown = -d
		}
		if d < 0 {
			sum += d
			negatives++
		}
		if d < -0.05 {
			out.DrawdownDays++
		}
		if d < -0.10 {
			out.RecoveryDays++
		}
	}
	if negatives > 0 {
		out.AvgDrawdown = math.Abs(sum / float64(negatives))
	}
	return out
}

// ParametricVaR assumes normally distributed returns and reports
// |mean + z*std| where z is the standard normal quantile at (1-confidence).
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)
	z := distuv.UnitNormal.Quantile(1 - confidence)
	return math.Abs(mean + sd*z)
}

// RollingVolatility returns the annualized sample standard deviation over a
// sliding window. The window is capped at the sample length; output has
// len(returns)-window+1 entries, or none when fewer than two observations
// fit a window.
func RollingVolatility(returns []float64, window int) []float64 {
	if window > len(returns) {
		window = len(returns)
	}
	if window < 2 {
		return nil
	}
	out := make([]float64, 0, len(returns)-window+1)
	for i := 0; i+window <= len(returns); i++ {
		out = append(out, stat.StdDev(returns[i:i+window], nil)*math.Sqrt(tradingDaysPerYear))
	}
	return out
}

// TreynorRatio is the annualized mean excess return per unit of beta. A
// zero beta yields 0.
func TreynorRatio(returns []float64, riskFreeAnnual, beta float64) float64 {
	if len(returns) < 2 || beta == 0 {
		return 0
	}
	daily := riskFreeAnnual / tradingDaysPerYear
	excess := stat.Mean(returns, nil) - daily
	return math.Sqrt(tradingDaysPerYear) * excess / beta
}

// InformationRatio is the annualized mean active return (asset minus
// benchmark) over the tracking error. Zero tracking error yields 0.
func InformationRatio(asset, bench []float64) float64 {
	if len(asset) < 2 || len(asset) != len(bench) {
		return 0
	}
	active := make([]float64, len(asset))
	for i := range asset {
		active[i] = asset[i] - bench[i]
	}
	sd := stat.StdDev(active, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * stat.Mean(active, nil) / sd
}

// correlation is Pearson correlation with NaN (degenerate variance) mapped
// to 0 so report fields stay finite.
func correlation(a, b []float64) float64 {
	if len(a) < 2 || len(a) != len(b) {
		return 0
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return c
}

// conditionalCorrelation restricts the pair to days where the benchmark
// moved in the given direction before correlating.
func conditionalCorrelation(asset, bench []float64, up bool) float64 {
	var a, b []float64
	for i := range bench {
		if (up && bench[i] > 0) || (!up && bench[i] < 0) {
			a = append(a, asset[i])
			b = append(b, bench[i])
		}
	}
	return correlation(a, b)
}

// BasicMetrics is the univariate metric block of a risk report. Field names
// follow the dashboard wire contract.
type BasicMetrics struct {
	Volatility        float64            `json:"volatility"`
	DailyVolatility   float64            `json:"daily_volatility"`
	CurrentVolatility float64            `json:"current_volatility"`
	VaR               float64            `json:"var"`
	CVaR              float64            `json:"cvar"`
	ParametricVaR95   float64            `json:"parametric_var_95"`
	ParametricVaR99   float64            `json:"parametric_var_99"`
	Beta              float64            `json:"beta"`
	RSquared          float64            `json:"r_squared"`
	SharpeRatio       float64            `json:"sharpe_ratio"`
	SortinoRatio      float64            `json:"sortino_ratio"`
	TreynorRatio      float64            `json:"treynor_ratio"`
	InfoRatio         float64            `json:"information_ratio"`
	MaxDrawdown       float64            `json:"max_drawdown"`
	Correlation       map[string]float64 `json:"correlation"`
	Drawdowns         DrawdownStats      `json:"drawdowns"`
}

// computeBasicMetrics derives the full univariate metric block from the
// aligned asset/market pair.
func computeBasicMetrics(pair AlignedPair, cfg Config) (*BasicMetrics, error) {
	if pair.Len() < 2 {
		return nil, ErrInsufficientData
	}
	returns := pair.Asset
	market := pair.Bench

	beta := Beta(returns, market)
	corr := correlation(returns, market)
	dailyVol := stat.StdDev(returns, nil)
	if math.IsNaN(dailyVol) {
		dailyVol = 0
	}

	m := &BasicMetrics{
		Volatility:      Volatility(returns),
		DailyVolatility: dailyVol,
		VaR:             ValueAtRisk(returns, confidence95),
		CVaR:            ConditionalVaR(returns, confidence95),
		ParametricVaR95: ParametricVaR(returns, confidence95),
		ParametricVaR99: ParametricVaR(returns, confidence99),
		Beta:            beta,
		RSquared:        corr * corr,
		SharpeRatio:     SharpeRatio(returns, cfg.RiskFreeRateAnnual),
		SortinoRatio:    SortinoRatio(returns, cfg.RiskFreeRateAnnual),
		TreynorRatio:    TreynorRatio(returns, cfg.RiskFreeRateAnnual, beta),
		InfoRatio:       InformationRatio(returns, market),
		MaxDrawdown:     MaxDrawdown(returns),
		Correlation: map[string]float64{
			"market":      corr,
			"market_up":   conditionalCorrelation(returns, market, true),
			"market_down": conditionalCorrelation(returns, market, false),
		},
		Drawdowns: AnalyzeDrawdowns(returns),
	}
	if rolling := RollingVolatility(returns, cfg.RollingVolWindow); len(rolling) > 0 {
		m.CurrentVolatility = rolling[len(rolling)-1]
	}
	return m, nil
}
