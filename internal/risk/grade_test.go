package risk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeReportRequiresBasicMetrics(t *testing.T) {
	_, err := GradeReport(nil)
	assert.Error(t, err)

	_, err = GradeReport(&Report{Symbol: "AAPL"})
	assert.Error(t, err)
}

func TestGradeReportLevels(t *testing.T) {
	cases := []struct {
		name    string
		metrics BasicMetrics
		level   RiskLevel
		score   int
		factors int
	}{
		{
			name:    "calm asset scores zero",
			metrics: BasicMetrics{Volatility: 0.10, MaxDrawdown: 0.05, VaR: 0.01, Beta: 0.9, SharpeRatio: 1.2},
			level:   RiskLevelLow,
			score:   0,
			factors: 0,
		},
		{
			name:    "elevated vol and drawdown",
			metrics: BasicMetrics{Volatility: 0.30, MaxDrawdown: 0.16, SharpeRatio: 0.5},
			level:   RiskLevelMedium,
			score:   2,
			factors: 2,
		},
		{
			name:    "high across the board",
			metrics: BasicMetrics{Volatility: 0.45, MaxDrawdown: 0.35, VaR: 0.04, SharpeRatio: 0.1},
			level:   RiskLevelHigh,
			score:   5,
			factors: 3,
		},
		{
			name:    "every signal firing",
			metrics: BasicMetrics{Volatility: 0.70, MaxDrawdown: 0.60, VaR: 0.06, Beta: -2.0, SharpeRatio: -0.5},
			level:   RiskLevelCritical,
			score:   10,
			factors: 5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := tc.metrics
			got, err := GradeReport(&Report{Symbol: "AAPL", BasicMetrics: &metrics})
			require.NoError(t, err)
			assert.Equal(t, tc.level, got.Level)
			assert.Equal(t, tc.score, got.Score)
			assert.Len(t, got.Factors, tc.factors)
		})
	}
}

func TestGradeReportBoundaryIsExclusive(t *testing.T) {
	// thresholds are strict, landing exactly on one does not score
	got, err := GradeReport(&Report{BasicMetrics: &BasicMetrics{
		Volatility:  0.25,
		MaxDrawdown: 0.15,
		VaR:         0.03,
		Beta:        1.5,
		SharpeRatio: 0,
	}})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, RiskLevelLow, got.Level)
}

func TestRiskLevelString(t *testing.T) {
	assert.Equal(t, "low", RiskLevelLow.String())
	assert.Equal(t, "medium", RiskLevelMedium.String())
	assert.Equal(t, "high", RiskLevelHigh.String())
	assert.Equal(t, "critical", RiskLevelCritical.String())
	assert.Equal(t, "unknown", RiskLevel(42).String())
}

func TestRiskLevelMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(RiskAssessment{Level: RiskLevelHigh, Score: 6})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"level":"high"`)
}
