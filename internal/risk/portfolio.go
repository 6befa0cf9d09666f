package risk

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Aidin1998/riskcore/pkg/models"
)

// PortfolioMetrics is the headline metric block for a weighted basket,
// computed on the weighted portfolio return series.
type PortfolioMetrics struct {
	AnnualReturn float64 `json:"annual_return"`
	Volatility   float64 `json:"volatility"`
	VaR95        float64 `json:"var_95"`
	CVaR95       float64 `json:"cvar_95"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}

// Diversification summarizes concentration and the benefit of mixing:
// Herfindahl index of weights, its reciprocal (effective position count),
// the diversification ratio (weighted average stand-alone volatility over
// portfolio volatility), and the average pairwise correlation.
type Diversification struct {
	HerfindahlIndex      float64 `json:"herfindahl_index"`
	EffectivePositions   float64 `json:"effective_positions"`
	DiversificationRatio float64 `json:"diversification_ratio"`
	AvgCorrelation       float64 `json:"avg_correlation"`
}

// RiskContribution attributes portfolio risk to positions via the
// covariance matrix: marginal contribution (sigma*w)_i / sigma_p, component
// contribution w_i * marginal, and each component's share of total risk.
// Marginal and component figures are annualized; shares are unitless and
// sum to one.
type RiskContribution struct {
	Marginal  map[string]float64 `json:"marginal"`
	Component map[string]float64 `json:"component"`
	Percent   map[string]float64 `json:"percent"`
}

// FactorExposure is the portfolio's sensitivity to one macro factor.
type FactorExposure struct {
	Beta        float64 `json:"beta"`
	Correlation float64 `json:"correlation"`
}

// collapsePositions dedupes positions by symbol, summing the weights of
// repeats. Symbol order follows first appearance so that weight vectors
// line up with ReturnTable columns.
func collapsePositions(positions []models.Position) ([]string, []float64) {
	symbols := make([]string, 0, len(positions))
	index := make(map[string]int, len(positions))
	weights := make([]float64, 0, len(positions))
	for _, p := range positions {
		if i, ok := index[p.Symbol]; ok {
			weights[i] += p.Weight.InexactFloat64()
			continue
		}
		index[p.Symbol] = len(symbols)
		symbols = append(symbols, p.Symbol)
		weights = append(weights, p.Weight.InexactFloat64())
	}
	return symbols, weights
}

// portfolioReturns collapses the wide table into the weighted portfolio
// return series over complete rows. Weights are aligned to table.Symbols.
func portfolioReturns(table ReturnTable, weights []float64) (ReturnSeries, error) {
	dates, data := table.CompleteRows()
	if len(dates) < 2 {
		return ReturnSeries{}, ErrInsufficientData
	}
	k := len(table.Symbols)
	out := ReturnSeries{
		Dates:  dates,
		Values: make([]float64, len(dates)),
	}
	for i := range dates {
		var sum float64
		for j := 0; j < k; j++ {
			sum += weights[j] * data[i*k+j]
		}
		out.Values[i] = sum
	}
	return out, nil
}

// computePortfolioMetrics runs the univariate metric battery on the
// portfolio series.
func computePortfolioMetrics(portfolio ReturnSeries, cfg Config) (*PortfolioMetrics, error) {
	if portfolio.Len() < 2 {
		return nil, ErrInsufficientData
	}
	r := portfolio.Values
	return &PortfolioMetrics{
		AnnualReturn: stat.Mean(r, nil) * tradingDaysPerYear,
		Volatility:   Volatility(r),
		VaR95:        ValueAtRisk(r, confidence95),
		CVaR95:       ConditionalVaR(r, confidence95),
		SharpeRatio:  SharpeRatio(r, cfg.RiskFreeRateAnnual),
		SortinoRatio: SortinoRatio(r, cfg.RiskFreeRateAnnual),
		MaxDrawdown:  MaxDrawdown(r),
	}, nil
}

// computeDiversification derives concentration and correlation diagnostics
// from the weights and the complete-row covariance structure.
func computeDiversification(table ReturnTable, weights []float64, portfolio ReturnSeries) (*Diversification, error) {
	dates, data := table.CompleteRows()
	k := len(table.Symbols)
	if len(dates) < 2 || k == 0 {
		return nil, ErrInsufficientData
	}

	var hhi float64
	for _, w := range weights {
		hhi += w * w
	}
	out := &Diversification{HerfindahlIndex: hhi}
	if hhi > 0 {
		out.EffectivePositions = 1 / hhi
	}

	x := mat.NewDense(len(dates), k, data)
	portfolioVol := Volatility(portfolio.Values)
	if portfolioVol > 0 {
		var weightedVol float64
		for j := 0; j < k; j++ {
			col := mat.Col(nil, j, x)
			weightedVol += weights[j] * Volatility(col)
		}
		out.DiversificationRatio = weightedVol / portfolioVol
	}

	if k >= 2 {
		corr := mat.NewSymDense(k, nil)
		stat.CorrelationMatrix(corr, x, nil)
		var sum float64
		var n int
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				v := corr.At(i, j)
				if !math.IsNaN(v) && !math.IsInf(v, 0) {
					sum += v
					n++
				}
			}
		}
		if n > 0 {
			out.AvgCorrelation = sum / float64(n)
		}
	}
	return out, nil
}

// computeRiskContribution attributes portfolio volatility to positions
// through the sample covariance matrix.
func computeRiskContribution(table ReturnTable, weights []float64) (*RiskContribution, error) {
	dates, data := table.CompleteRows()
	k := len(table.Symbols)
	if len(dates) < 2 || k == 0 {
		return nil, ErrInsufficientData
	}

	cov := mat.NewSymDense(k, nil)
	stat.CovarianceMatrix(cov, mat.NewDense(len(dates), k, data), nil)

	w := mat.NewVecDense(k, weights)
	var sigmaW mat.VecDense
	sigmaW.MulVec(cov, w)
	portVar := mat.Dot(w, &sigmaW)
	if portVar <= 0 || math.IsNaN(portVar) {
		return nil, ErrInsufficientData
	}
	portSD := math.Sqrt(portVar)

	annual := math.Sqrt(tradingDaysPerYear)
	out := &RiskContribution{
		Marginal:  make(map[string]float64, k),
		Component: make(map[string]float64, k),
		Percent:   make(map[string]float64, k),
	}
	for j, sym := range table.Symbols {
		marginal := sigmaW.AtVec(j) / portSD
		component := weights[j] * marginal
		out.Marginal[sym] = marginal * annual
		out.Component[sym] = component * annual
		out.Percent[sym] = component / portSD
	}
	return out, nil
}

// computeFactorExposure regresses the portfolio series against each factor
// proxy. Factors without enough overlapping history are omitted.
func computeFactorExposure(portfolio ReturnSeries, factors map[string]ReturnSeries) (map[string]FactorExposure, error) {
	if portfolio.Len() < 2 {
		return nil, ErrInsufficientData
	}
	out := make(map[string]FactorExposure, len(factors))
	for name, f := range factors {
		pair := AlignSeries(portfolio, f)
		if pair.Len() < 2 {
			continue
		}
		out[name] = FactorExposure{
			Beta:        Beta(pair.Asset, pair.Bench),
			Correlation: correlation(pair.Asset, pair.Bench),
		}
	}
	return out, nil
}

// computeScenarioImpact replays the synthetic stress scenarios on the
// weighted portfolio series. Correlation breakdown attenuates against the
// market proxy when its history overlaps; otherwise the portfolio's own
// series stands in as the benchmark.
func computeScenarioImpact(portfolio ReturnSeries, market ReturnSeries) (map[string]StressResult, error) {
	pair := AlignSeries(portfolio, market)
	if pair.Len() < 2 {
		pair = AlignedPair{Dates: portfolio.Dates, Asset: portfolio.Values, Bench: portfolio.Values}
	}
	return runStressTests(pair)
}
