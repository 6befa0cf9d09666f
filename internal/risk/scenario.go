package risk

import "time"

// historicalScenarios are the fixed stress windows replayed against the
// asset's own history.
var historicalScenarios = []struct {
	Name       string
	Start, End time.Time
}{
	{"covid_crash", date(2020, time.February, 19), date(2020, time.March, 23)},
	{"financial_crisis", date(2008, time.September, 15), date(2009, time.March, 9)},
	{"tech_bubble", date(2000, time.March, 10), date(2002, time.October, 9)},
	{"flash_crash", date(2010, time.May, 6), date(2010, time.May, 6)},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ScenarioResult reports realized performance and risk inside one window.
type ScenarioResult struct {
	TotalReturn float64 `json:"total_return"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Volatility  float64 `json:"volatility"`
	VaR95       float64 `json:"var_95"`
}

// analyzeScenarios replays each historical window against the asset's own
// return series. Windows where the asset has no observations are omitted
// from the result; an empty result is valid, not an error. Volatility
// inside a one-observation window reports 0.
func analyzeScenarios(series ReturnSeries) (map[string]ScenarioResult, error) {
	results := make(map[string]ScenarioResult)
	for _, sc := range historicalScenarios {
		window := series.Slice(sc.Start, sc.End)
		if window.Len() == 0 {
			continue
		}
		total := 1.0
		for _, r := range window.Values {
			total *= 1 + r
		}
		results[sc.Name] = ScenarioResult{
			TotalReturn: total - 1,
			MaxDrawdown: MaxDrawdown(window.Values),
			Volatility:  Volatility(window.Values),
			VaR95:       ValueAtRisk(window.Values, confidence95),
		}
	}
	return results, nil
}
