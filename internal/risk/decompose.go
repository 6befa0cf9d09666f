package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// VarianceShares splits return variance between the beta-driven and the
// residual component. The two shares need not sum to one; the covariance
// cross-term between the components is not re-attributed.
type VarianceShares struct {
	Systematic    float64 `json:"systematic"`
	Idiosyncratic float64 `json:"idiosyncratic"`
}

// RiskDecomposition is the systematic/idiosyncratic section of a report.
type RiskDecomposition struct {
	SystematicRisk    float64        `json:"systematic_risk"`
	IdiosyncraticRisk float64        `json:"idiosyncratic_risk"`
	RSquared          float64        `json:"r_squared"`
	Shares            VarianceShares `json:"risk_decomposition"`
}

// decomposeRisk splits the asset's returns into beta*market and the
// residual, reporting the annualized volatility of each component, the
// variance shares, and R-squared against the market.
func decomposeRisk(pair AlignedPair) (*RiskDecomposition, error) {
	if pair.Len() < 2 {
		return nil, ErrInsufficientData
	}

	beta := Beta(pair.Asset, pair.Bench)
	systematic := make([]float64, pair.Len())
	idiosyncratic := make([]float64, pair.Len())
	for i := range pair.Asset {
		systematic[i] = beta * pair.Bench[i]
		idiosyncratic[i] = pair.Asset[i] - systematic[i]
	}

	corr := correlation(pair.Asset, pair.Bench)
	out := &RiskDecomposition{
		SystematicRisk:    Volatility(systematic),
		IdiosyncraticRisk: Volatility(idiosyncratic),
		RSquared:          corr * corr,
	}

	assetVar := stat.Variance(pair.Asset, nil)
	if assetVar > 0 && !math.IsNaN(assetVar) {
		out.Shares = VarianceShares{
			Systematic:    stat.Variance(systematic, nil) / assetVar,
			Idiosyncratic: stat.Variance(idiosyncratic, nil) / assetVar,
		}
	}
	return out, nil
}
