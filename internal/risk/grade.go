package risk

import (
	"fmt"
	"math"
)

// RiskLevel buckets a computed report into coarse grades for dashboards
// and alert routing.
type RiskLevel int

const (
	RiskLevelLow RiskLevel = iota
	RiskLevelMedium
	RiskLevelHigh
	RiskLevelCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLevelLow:
		return "low"
	case RiskLevelMedium:
		return "medium"
	case RiskLevelHigh:
		return "high"
	case RiskLevelCritical:
		return "critical"
	}
	return "unknown"
}

// MarshalJSON emits the level name rather than its ordinal.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// RiskAssessment is a qualitative condensation of a report: a grade, the
// accumulated score behind it, and the signals that contributed.
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Score   int       `json:"score"`
	Factors []string  `json:"factors"`
}

// GradeReport scores the headline metrics of a report and assigns a risk
// level. It requires the basic metrics section; reports where that section
// degraded cannot be graded.
func GradeReport(r *Report) (*RiskAssessment, error) {
	if r == nil || r.BasicMetrics == nil {
		return nil, fmt.Errorf("risk: grading requires the basic metrics section")
	}
	m := r.BasicMetrics

	var score int
	var factors []string
	add := func(points int, factor string) {
		score += points
		factors = append(factors, factor)
	}

	switch {
	case m.Volatility > 0.60:
		add(3, "extreme annualized volatility")
	case m.Volatility > 0.40:
		add(2, "high annualized volatility")
	case m.Volatility > 0.25:
		add(1, "elevated annualized volatility")
	}
	switch {
	case m.MaxDrawdown > 0.50:
		add(3, "extreme historical drawdown")
	case m.MaxDrawdown > 0.30:
		add(2, "deep historical drawdown")
	case m.MaxDrawdown > 0.15:
		add(1, "notable historical drawdown")
	}
	switch {
	case m.VaR > 0.05:
		add(2, "daily value at risk above 5%")
	case m.VaR > 0.03:
		add(1, "daily value at risk above 3%")
	}
	if math.Abs(m.Beta) > 1.5 {
		add(1, "beta magnitude above 1.5")
	}
	if m.SharpeRatio < 0 {
		add(1, "negative risk-adjusted return")
	}

	level := RiskLevelLow
	switch {
	case score >= 8:
		level = RiskLevelCritical
	case score >= 5:
		level = RiskLevelHigh
	case score >= 2:
		level = RiskLevelMedium
	}
	return &RiskAssessment{Level: level, Score: score, Factors: factors}, nil
}
