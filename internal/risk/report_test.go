package risk

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMarshalDegradedSections(t *testing.T) {
	report := &Report{
		ID:          uuid.New(),
		Symbol:      "AAPL",
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))

	require.Contains(t, obj, "report_id")
	require.Contains(t, obj, "symbol")
	require.Contains(t, obj, "generated_at")

	// every section key is on the wire even when nothing was computed
	for _, section := range assetSections {
		require.Contains(t, obj, section)
		assert.JSONEq(t, "{}", string(obj[section]), section)
	}
	assert.NotContains(t, obj, "failures")
}

func TestReportMarshalPopulatedSection(t *testing.T) {
	report := &Report{
		ID:     uuid.New(),
		Symbol: "AAPL",
		BasicMetrics: &BasicMetrics{
			Volatility: 0.25,
			Beta:       1.1,
		},
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))

	var metrics BasicMetrics
	require.NoError(t, json.Unmarshal(obj[SectionBasicMetrics], &metrics))
	assert.Equal(t, 0.25, metrics.Volatility)
	assert.Equal(t, 1.1, metrics.Beta)
}

func TestReportEmptyScenarioMapIsNotDegraded(t *testing.T) {
	report := &Report{
		ID:               uuid.New(),
		Symbol:           "AAPL",
		ScenarioAnalysis: map[string]ScenarioResult{},
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))

	// no overlapping windows and a degraded section look identical on the
	// wire, the failures array is what tells them apart
	assert.JSONEq(t, "{}", string(obj[SectionScenarioAnalysis]))
	assert.False(t, report.Unavailable(SectionScenarioAnalysis))
	assert.NotContains(t, obj, "failures")
}

func TestReportFailuresOnWire(t *testing.T) {
	report := &Report{
		ID:     uuid.New(),
		Symbol: "AAPL",
		Failures: []SectionError{
			{Section: SectionTailRisk, Err: "insufficient data"},
		},
	}

	assert.True(t, report.Unavailable(SectionTailRisk))
	assert.False(t, report.Unavailable(SectionBasicMetrics))

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	require.Contains(t, obj, "failures")

	var failures []SectionError
	require.NoError(t, json.Unmarshal(obj["failures"], &failures))
	require.Len(t, failures, 1)
	assert.Equal(t, SectionTailRisk, failures[0].Section)
	assert.Equal(t, "insufficient data", failures[0].Err)
}

func TestPortfolioReportMarshal(t *testing.T) {
	report := &PortfolioReport{
		ID:          uuid.New(),
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		PortfolioMetrics: &PortfolioMetrics{
			Volatility: 0.18,
		},
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))

	require.Contains(t, obj, "report_id")
	require.Contains(t, obj, "positions")
	require.Contains(t, obj, "generated_at")
	for _, section := range portfolioSections {
		require.Contains(t, obj, section)
	}

	var metrics PortfolioMetrics
	require.NoError(t, json.Unmarshal(obj[SectionPortfolioMetrics], &metrics))
	assert.Equal(t, 0.18, metrics.Volatility)
	assert.JSONEq(t, "{}", string(obj[SectionDiversification]))
}
