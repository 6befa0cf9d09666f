package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stressPair builds an aligned pair over consecutive days for the stress
// scenarios, which only read the return values.
func stressPair(asset, bench []float64) AlignedPair {
	dates := make([]time.Time, len(asset))
	d := date(2024, time.January, 2)
	for i := range dates {
		dates[i] = d
		d = d.AddDate(0, 0, 1)
	}
	return AlignedPair{Dates: dates, Asset: asset, Bench: bench}
}

// twenty daily returns with a worst day of -4%; small enough that the
// appended -20%/-15% shocks dominate the left tail.
var stressBase = []float64{
	0.012, -0.008, 0.021, -0.015, 0.004, 0.009, -0.022, 0.017, -0.004, 0.011,
	0.006, -0.012, 0.019, -0.040, 0.008, 0.014, -0.006, 0.002, -0.018, 0.010,
}

func TestRunStressTestsScenarios(t *testing.T) {
	pair := stressPair(stressBase, stressBase)

	results, err := runStressTests(pair)
	require.NoError(t, err)
	require.Len(t, results, 4)

	crash, ok := results["market_crash"]
	require.True(t, ok)
	liquidity, ok := results["liquidity_crisis"]
	require.True(t, ok)
	highVol, ok := results["high_volatility"]
	require.True(t, ok)
	breakdown, ok := results["correlation_breakdown"]
	require.True(t, ok)

	assert.Equal(t, -0.20, crash.Shock)
	assert.Equal(t, -0.15, liquidity.Shock)
	assert.Equal(t, 2.0, highVol.Shock)
	assert.Equal(t, 0.5, breakdown.Shock)

	// 21 points put the 5th percentile exactly on the second order
	// statistic, the base worst day; the appended shock sits below it.
	assert.InDelta(t, 0.040, crash.VaR95, 1e-12)
	assert.InDelta(t, 0.040, liquidity.VaR95, 1e-12)
	// tail mean over the shock and the base worst day
	assert.InDelta(t, (0.20+0.040)/2, crash.CVaR95, 1e-12)
	assert.InDelta(t, (0.15+0.040)/2, liquidity.CVaR95, 1e-12)

	assert.Greater(t, crash.CVaR95, liquidity.CVaR95)
	assert.Greater(t, crash.MaxDrawdown, MaxDrawdown(stressBase))
	for name, r := range results {
		assert.GreaterOrEqual(t, r.CVaR95, r.VaR95, "scenario %s", name)
	}
}

func TestRunStressTestsHighVolatilityWidensTail(t *testing.T) {
	pair := stressPair(stressBase, stressBase)

	results, err := runStressTests(pair)
	require.NoError(t, err)
	assert.Greater(t, results["high_volatility"].VaR95, ValueAtRisk(stressBase, confidence95))
}

func TestRunStressTestsCorrelationBreakdownHalvesSystematicRisk(t *testing.T) {
	// asset identical to the benchmark: fully systematic, beta 1, so the
	// 0.5 attenuation halves every return and with it the loss metrics.
	pair := stressPair(stressBase, stressBase)

	results, err := runStressTests(pair)
	require.NoError(t, err)

	breakdown := results["correlation_breakdown"]
	assert.InDelta(t, 0.5*ValueAtRisk(stressBase, confidence95), breakdown.VaR95, 1e-9)
	assert.InDelta(t, 0.5*ConditionalVaR(stressBase, confidence95), breakdown.CVaR95, 1e-9)
}

func TestScaledVolatilityCopyPreservesMean(t *testing.T) {
	out := scaledVolatilityCopy([]float64{0.01, 0.03}, 2.0)

	// mean 0.02 stays, deviations double
	require.Len(t, out, 2)
	assert.InDelta(t, 0.00, out[0], 1e-15)
	assert.InDelta(t, 0.04, out[1], 1e-15)
}

func TestShockedCopyAppendsWithoutMutation(t *testing.T) {
	in := []float64{0.01, -0.02}
	out := shockedCopy(in, -0.20)

	require.Len(t, out, 3)
	assert.Equal(t, -0.20, out[2])
	assert.Equal(t, []float64{0.01, -0.02}, in)
}

func TestRunStressTestsDoesNotMutateInput(t *testing.T) {
	asset := append([]float64(nil), stressBase...)
	bench := append([]float64(nil), stressBase...)
	pair := stressPair(asset, bench)

	_, err := runStressTests(pair)
	require.NoError(t, err)
	assert.Equal(t, stressBase, asset)
	assert.Equal(t, stressBase, bench)
}

func TestRunStressTestsInsufficientData(t *testing.T) {
	_, err := runStressTests(stressPair([]float64{0.01}, []float64{0.02}))
	assert.ErrorIs(t, err, ErrInsufficientData)
}
