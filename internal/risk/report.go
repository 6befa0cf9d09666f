package risk

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Aidin1998/riskcore/pkg/models"
)

// Report section names, used for failure records and metrics labels.
const (
	SectionBasicMetrics     = "basic_metrics"
	SectionTailRisk         = "tail_risk"
	SectionStressTest       = "stress_test"
	SectionScenarioAnalysis = "scenario_analysis"
	SectionCorrelation      = "correlation_analysis"
	SectionDecomposition    = "risk_decomposition"

	SectionPortfolioMetrics = "portfolio_metrics"
	SectionDiversification  = "diversification"
	SectionRiskContribution = "risk_contribution"
	SectionFactorExposure   = "factor_exposure"
	SectionScenarioImpact   = "scenario_impact"
)

// SectionError records one contained sub-analysis failure. The section's
// wire value degrades to an empty object while the rest of the report
// stands.
type SectionError struct {
	Section string `json:"section"`
	Err     string `json:"error"`
}

// Report is the single-asset risk report. A nil section pointer (or nil
// map) is the explicit unavailable marker; on the wire it appears as an
// empty object under its key, never as a missing key.
type Report struct {
	ID          uuid.UUID
	Symbol      string
	GeneratedAt time.Time

	BasicMetrics        *BasicMetrics
	TailRisk            *TailRisk
	StressTest          map[string]StressResult
	ScenarioAnalysis    map[string]ScenarioResult
	CorrelationAnalysis *CorrelationAnalysis
	RiskDecomposition   *RiskDecomposition

	Failures []SectionError
}

// Unavailable reports whether the named section degraded.
func (r *Report) Unavailable(section string) bool {
	for _, f := range r.Failures {
		if f.Section == section {
			return true
		}
	}
	return false
}

// MarshalJSON emits the dashboard wire format: the six section keys are
// always present, degraded sections as {}.
func (r *Report) MarshalJSON() ([]byte, error) {
	obj := map[string]any{
		"report_id":    r.ID,
		"symbol":       r.Symbol,
		"generated_at": r.GeneratedAt,

		SectionBasicMetrics:     sectionOrEmpty(r.BasicMetrics != nil, r.BasicMetrics),
		SectionTailRisk:         sectionOrEmpty(r.TailRisk != nil, r.TailRisk),
		SectionStressTest:       sectionOrEmpty(r.StressTest != nil, r.StressTest),
		SectionScenarioAnalysis: sectionOrEmpty(r.ScenarioAnalysis != nil, r.ScenarioAnalysis),
		SectionCorrelation:      sectionOrEmpty(r.CorrelationAnalysis != nil, r.CorrelationAnalysis),
		SectionDecomposition:    sectionOrEmpty(r.RiskDecomposition != nil, r.RiskDecomposition),
	}
	if len(r.Failures) > 0 {
		obj["failures"] = r.Failures
	}
	return json.Marshal(obj)
}

// PortfolioReport is the weighted-basket risk report. Section semantics
// mirror Report.
type PortfolioReport struct {
	ID          uuid.UUID
	Positions   []models.Position
	GeneratedAt time.Time

	PortfolioMetrics *PortfolioMetrics
	Diversification  *Diversification
	RiskContribution *RiskContribution
	FactorExposure   map[string]FactorExposure
	ScenarioImpact   map[string]StressResult

	Failures []SectionError
}

// Unavailable reports whether the named section degraded.
func (r *PortfolioReport) Unavailable(section string) bool {
	for _, f := range r.Failures {
		if f.Section == section {
			return true
		}
	}
	return false
}

// MarshalJSON emits the five portfolio section keys, degraded sections
// as {}.
func (r *PortfolioReport) MarshalJSON() ([]byte, error) {
	obj := map[string]any{
		"report_id":    r.ID,
		"positions":    r.Positions,
		"generated_at": r.GeneratedAt,

		SectionPortfolioMetrics: sectionOrEmpty(r.PortfolioMetrics != nil, r.PortfolioMetrics),
		SectionDiversification:  sectionOrEmpty(r.Diversification != nil, r.Diversification),
		SectionRiskContribution: sectionOrEmpty(r.RiskContribution != nil, r.RiskContribution),
		SectionFactorExposure:   sectionOrEmpty(r.FactorExposure != nil, r.FactorExposure),
		SectionScenarioImpact:   sectionOrEmpty(r.ScenarioImpact != nil, r.ScenarioImpact),
	}
	if len(r.Failures) > 0 {
		obj["failures"] = r.Failures
	}
	return json.Marshal(obj)
}

func sectionOrEmpty(ok bool, v any) any {
	if !ok {
		return struct{}{}
	}
	return v
}
