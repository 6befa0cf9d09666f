package risk

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RollingCorrelation is a windowed correlation time series; Values[i] is
// the correlation over the window ending at Dates[i].
type RollingCorrelation struct {
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// CorrelationAnalysis is the cross-asset correlation section of a report:
// the pairwise matrix over the asset and the macro-factor universe, the
// rolling correlation of the asset against each factor, and a stationarity
// diagnostic (variance of each rolling series).
type CorrelationAnalysis struct {
	Matrix    map[string]map[string]float64 `json:"correlation_matrix"`
	Rolling   map[string]RollingCorrelation `json:"rolling_correlations"`
	Stability map[string]float64            `json:"correlation_stability"`
}

// analyzeCorrelations builds the correlation section. The universe is the
// analyzed symbol plus the configured factors, deduplicated. The matrix is
// computed over rows where every member has an observation; the rolling
// series use pairwise alignment so a sparse factor does not starve the
// others.
func analyzeCorrelations(symbol string, asset ReturnSeries, factors map[string]ReturnSeries, window int) (*CorrelationAnalysis, error) {
	universe := []string{symbol}
	for _, f := range sortedKeys(factors) {
		if f != symbol {
			universe = append(universe, f)
		}
	}

	series := map[string]ReturnSeries{symbol: asset}
	for name, s := range factors {
		if name != symbol {
			series[name] = s
		}
	}

	table := BuildReturnTable(series, universe)
	dates, data := table.CompleteRows()
	if len(dates) < 2 {
		return nil, ErrInsufficientData
	}

	k := len(universe)
	corr := mat.NewSymDense(k, nil)
	stat.CorrelationMatrix(corr, mat.NewDense(len(dates), k, data), nil)

	matrix := make(map[string]map[string]float64, k)
	for i, si := range universe {
		row := make(map[string]float64, k)
		for j, sj := range universe {
			v := corr.At(i, j)
			switch {
			case i == j:
				v = 1
			case math.IsNaN(v) || math.IsInf(v, 0):
				v = 0
			}
			row[sj] = v
		}
		matrix[si] = row
	}

	rolling := make(map[string]RollingCorrelation)
	stability := make(map[string]float64)
	for _, f := range universe[1:] {
		pair := AlignSeries(asset, series[f])
		rc := rollingCorrelation(pair, window)
		if len(rc.Values) == 0 {
			continue
		}
		rolling[f] = rc
		if len(rc.Values) >= 2 {
			if v := stat.Variance(rc.Values, nil); !math.IsNaN(v) {
				stability[f] = v
			}
		}
	}

	return &CorrelationAnalysis{
		Matrix:    matrix,
		Rolling:   rolling,
		Stability: stability,
	}, nil
}

// rollingCorrelation slides a fixed window over the aligned pair.
func rollingCorrelation(pair AlignedPair, window int) RollingCorrelation {
	var out RollingCorrelation
	if window < 2 || pair.Len() < window {
		return out
	}
	for i := 0; i+window <= pair.Len(); i++ {
		out.Dates = append(out.Dates, pair.Dates[i+window-1])
		out.Values = append(out.Values, correlation(pair.Asset[i:i+window], pair.Bench[i:i+window]))
	}
	return out
}

func sortedKeys(m map[string]ReturnSeries) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
