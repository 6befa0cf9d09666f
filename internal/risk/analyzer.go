// Package risk implements the quantitative risk computation core: return
// series construction, univariate risk metrics, tail analysis, stress
// testing, historical scenario replay, correlation structure, and
// systematic/idiosyncratic decomposition, for single assets and weighted
// portfolios. Price history arrives through the marketdata.PriceProvider
// collaborator; all outputs are transient, recomputed per request.
package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aidin1998/riskcore/internal/marketdata"
	"github.com/Aidin1998/riskcore/pkg/metrics"
	"github.com/Aidin1998/riskcore/pkg/models"
)

// Analyzer computes risk reports. It is safe for concurrent use; every
// request works on its own immutable series.
type Analyzer struct {
	provider marketdata.PriceProvider
	cfg      Config
	logger   *zap.Logger
}

// NewAnalyzer creates an Analyzer with explicit configuration. A nil logger
// falls back to a no-op logger.
func NewAnalyzer(provider marketdata.PriceProvider, cfg Config, logger *zap.Logger) (*Analyzer, error) {
	if provider == nil {
		return nil, fmt.Errorf("risk: price provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("risk: invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		provider: provider,
		cfg:      cfg,
		logger:   logger.Named("risk"),
	}, nil
}

var assetSections = []string{
	SectionBasicMetrics,
	SectionTailRisk,
	SectionStressTest,
	SectionScenarioAnalysis,
	SectionCorrelation,
	SectionDecomposition,
}

var portfolioSections = []string{
	SectionPortfolioMetrics,
	SectionDiversification,
	SectionRiskContribution,
	SectionFactorExposure,
	SectionScenarioImpact,
}

// AnalyzeAsset produces the full single-asset risk report over the trailing
// lookback window. Provider failures abort the analysis and yield an empty
// report alongside the error; statistical faults degrade only their own
// section.
func (a *Analyzer) AnalyzeAsset(ctx context.Context, symbol string) (*Report, error) {
	start := time.Now()
	report := &Report{ID: uuid.New(), Symbol: symbol, GeneratedAt: start.UTC()}

	if symbol == "" {
		a.failAll(report, assetSections, fmt.Errorf("risk: symbol must not be empty"))
		a.observe("asset", "error", start)
		return report, fmt.Errorf("risk: symbol must not be empty")
	}

	assetPrices, err := a.provider.PricesSince(ctx, symbol, a.cfg.LookbackDays)
	if err != nil {
		return a.assetUpstreamFailure(report, symbol, start, err)
	}
	marketPrices, err := a.provider.PricesSince(ctx, a.cfg.MarketProxySymbol, a.cfg.LookbackDays)
	if err != nil {
		return a.assetUpstreamFailure(report, symbol, start, err)
	}

	asset := BuildReturnSeries(assetPrices)
	market := BuildReturnSeries(marketPrices)
	pair := AlignSeries(asset, market)
	factors := a.fetchFactors(ctx, market, false)

	a.runSections(report, []section{
		{SectionBasicMetrics, func() error {
			m, err := computeBasicMetrics(pair, a.cfg)
			report.BasicMetrics = m
			return err
		}},
		{SectionTailRisk, func() error {
			t, err := analyzeTailRisk(pair.Asset)
			report.TailRisk = t
			return err
		}},
		{SectionStressTest, func() error {
			s, err := runStressTests(pair)
			report.StressTest = s
			return err
		}},
		{SectionScenarioAnalysis, func() error {
			s, err := analyzeScenarios(asset)
			report.ScenarioAnalysis = s
			return err
		}},
		{SectionCorrelation, func() error {
			c, err := analyzeCorrelations(symbol, asset, factors, a.cfg.RollingCorrWindow)
			report.CorrelationAnalysis = c
			return err
		}},
		{SectionDecomposition, func() error {
			d, err := decomposeRisk(pair)
			report.RiskDecomposition = d
			return err
		}},
	})

	a.logger.Info("asset risk analysis complete",
		zap.String("symbol", symbol),
		zap.Int("observations", pair.Len()),
		zap.Int("failed_sections", len(report.Failures)),
		zap.Duration("elapsed", time.Since(start)))
	a.observe("asset", "success", start)
	return report, nil
}

// AnalyzePortfolio produces the portfolio-level risk report from the full
// price history of every distinct position symbol.
func (a *Analyzer) AnalyzePortfolio(ctx context.Context, positions []models.Position) (*PortfolioReport, error) {
	start := time.Now()
	report := &PortfolioReport{ID: uuid.New(), Positions: positions, GeneratedAt: start.UTC()}

	if len(positions) == 0 {
		err := fmt.Errorf("risk: portfolio has no positions")
		a.failAll(report, portfolioSections, err)
		a.observe("portfolio", "error", start)
		return report, err
	}
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			a.failAll(report, portfolioSections, err)
			a.observe("portfolio", "error", start)
			return report, err
		}
	}

	symbols, weights := collapsePositions(positions)
	series := make(map[string]ReturnSeries, len(symbols))
	for _, sym := range symbols {
		prices, err := a.provider.PriceHistory(ctx, sym)
		if err != nil {
			a.logger.Error("price history unavailable, aborting portfolio analysis",
				zap.String("symbol", sym), zap.Error(err))
			a.failAll(report, portfolioSections, err)
			a.observe("portfolio", "error", start)
			return report, fmt.Errorf("risk: fetch history for %s: %w", sym, err)
		}
		series[sym] = BuildReturnSeries(prices)
	}

	table := BuildReturnTable(series, symbols)
	portfolio, prErr := portfolioReturns(table, weights)
	factors := a.fetchFactors(ctx, ReturnSeries{}, true)
	market := factors[a.cfg.MarketProxySymbol]

	a.runSections(report, []section{
		{SectionPortfolioMetrics, func() error {
			if prErr != nil {
				return prErr
			}
			m, err := computePortfolioMetrics(portfolio, a.cfg)
			report.PortfolioMetrics = m
			return err
		}},
		{SectionDiversification, func() error {
			if prErr != nil {
				return prErr
			}
			d, err := computeDiversification(table, weights, portfolio)
			report.Diversification = d
			return err
		}},
		{SectionRiskContribution, func() error {
			c, err := computeRiskContribution(table, weights)
			report.RiskContribution = c
			return err
		}},
		{SectionFactorExposure, func() error {
			if prErr != nil {
				return prErr
			}
			f, err := computeFactorExposure(portfolio, factors)
			report.FactorExposure = f
			return err
		}},
		{SectionScenarioImpact, func() error {
			if prErr != nil {
				return prErr
			}
			s, err := computeScenarioImpact(portfolio, market)
			report.ScenarioImpact = s
			return err
		}},
	})

	a.logger.Info("portfolio risk analysis complete",
		zap.Int("positions", len(positions)),
		zap.Int("observations", portfolio.Len()),
		zap.Int("failed_sections", len(report.Failures)),
		zap.Duration("elapsed", time.Since(start)))
	a.observe("portfolio", "success", start)
	return report, nil
}

// section pairs a report key with its computation.
type section struct {
	name string
	fn   func() error
}

// runSections fans the sub-analyses out on goroutines. Each closure writes
// a distinct report field, so the only merge point is the failure list
// collected after Wait.
func (a *Analyzer) runSections(report failable, sections []section) {
	failures := make([]*SectionError, len(sections))
	var wg sync.WaitGroup
	for i, s := range sections {
		wg.Add(1)
		go func(i int, s section) {
			defer wg.Done()
			failures[i] = a.guard(s.name, s.fn)
		}(i, s)
	}
	wg.Wait()

	for _, f := range failures {
		if f != nil {
			report.fail(*f)
		}
	}
}

// guard runs one sub-analysis inside its containment boundary: errors and
// panics are logged, counted, and converted into a SectionError.
func (a *Analyzer) guard(name string, fn func() error) (se *SectionError) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Warn("sub-analysis panicked",
				zap.String("section", name), zap.Any("panic", rec))
			metrics.SectionFailures.WithLabelValues(name).Inc()
			se = &SectionError{Section: name, Err: fmt.Sprintf("panic: %v", rec)}
		}
	}()
	if err := fn(); err != nil {
		a.logger.Warn("sub-analysis unavailable",
			zap.String("section", name), zap.Error(err))
		metrics.SectionFailures.WithLabelValues(name).Inc()
		return &SectionError{Section: name, Err: err.Error()}
	}
	return nil
}

// fetchFactors loads the factor universe. The asset path reads the trailing
// lookback window; the portfolio path reads full history so factor exposure
// and scenario impact cover the same span as the portfolio series. The
// market proxy reuses the already-built series when provided. Factor fetches
// are best effort: a missing factor shrinks the universe and is logged, it
// does not abort the report.
func (a *Analyzer) fetchFactors(ctx context.Context, market ReturnSeries, fullHistory bool) map[string]ReturnSeries {
	factors := make(map[string]ReturnSeries, len(a.cfg.FactorSymbols))
	for _, sym := range a.cfg.FactorSymbols {
		if sym == a.cfg.MarketProxySymbol && market.Len() > 0 {
			factors[sym] = market
			continue
		}
		var prices []models.PricePoint
		var err error
		if fullHistory {
			prices, err = a.provider.PriceHistory(ctx, sym)
		} else {
			prices, err = a.provider.PricesSince(ctx, sym, a.cfg.LookbackDays)
		}
		if err != nil {
			a.logger.Warn("factor history unavailable",
				zap.String("factor", sym), zap.Error(err))
			continue
		}
		factors[sym] = BuildReturnSeries(prices)
	}
	return factors
}

// assetUpstreamFailure finalizes a report whose price fetches failed: every
// section is marked unavailable and the error is returned to the caller.
func (a *Analyzer) assetUpstreamFailure(report *Report, symbol string, start time.Time, err error) (*Report, error) {
	a.logger.Error("price history unavailable, aborting analysis",
		zap.String("symbol", symbol), zap.Error(err))
	a.failAll(report, assetSections, err)
	a.observe("asset", "error", start)
	return report, fmt.Errorf("risk: analyze %s: %w", symbol, err)
}

type failable interface{ fail(SectionError) }

func (r *Report) fail(se SectionError)          { r.Failures = append(r.Failures, se) }
func (r *PortfolioReport) fail(se SectionError) { r.Failures = append(r.Failures, se) }

// failAll marks every section unavailable with the same cause.
func (a *Analyzer) failAll(report failable, sections []string, err error) {
	for _, s := range sections {
		metrics.SectionFailures.WithLabelValues(s).Inc()
		report.fail(SectionError{Section: s, Err: err.Error()})
	}
}

func (a *Analyzer) observe(mode, status string, start time.Time) {
	metrics.AnalysesTotal.WithLabelValues(mode, status).Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
}
