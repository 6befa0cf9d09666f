package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalFit holds maximum-likelihood normal parameters.
type NormalFit struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// StudentTFit holds maximum-likelihood Student-t parameters.
type StudentTFit struct {
	DF    float64 `json:"df"`
	Loc   float64 `json:"loc"`
	Scale float64 `json:"scale"`
}

// DistributionFit reports the two fitted models side by side. The fits are
// descriptive; the VaR/CVaR figures stay empirical.
type DistributionFit struct {
	Normal   NormalFit   `json:"normal"`
	StudentT StudentTFit `json:"student_t"`
}

// TailRatios is the fraction of returns beyond three standard deviations on
// each side.
type TailRatios struct {
	Left  float64 `json:"left_tail_ratio"`
	Right float64 `json:"right_tail_ratio"`
}

// TailRisk is the tail-risk section of a report.
type TailRisk struct {
	VaR95           float64         `json:"var_95"`
	VaR99           float64         `json:"var_99"`
	CVaR95          float64         `json:"cvar_95"`
	CVaR99          float64         `json:"cvar_99"`
	TailRatios      TailRatios      `json:"tail_ratios"`
	DistributionFit DistributionFit `json:"distribution_fit"`
}

// analyzeTailRisk computes empirical tail losses, extreme-move frequencies,
// and the fitted distribution parameters. Any fitting failure degrades the
// whole section.
func analyzeTailRisk(returns []float64) (*TailRisk, error) {
	if len(returns) < 2 {
		return nil, ErrInsufficientData
	}
	sd := stat.StdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, fmt.Errorf("risk: degenerate sample for distribution fit")
	}

	var left, right int
	for _, r := range returns {
		if r < -3*sd {
			left++
		}
		if r > 3*sd {
			right++
		}
	}
	n := float64(len(returns))

	normal := fitNormal(returns)
	studentT, err := fitStudentT(returns)
	if err != nil {
		return nil, err
	}

	return &TailRisk{
		VaR95:  ValueAtRisk(returns, confidence95),
		VaR99:  ValueAtRisk(returns, confidence99),
		CVaR95: ConditionalVaR(returns, confidence95),
		CVaR99: ConditionalVaR(returns, confidence99),
		TailRatios: TailRatios{
			Left:  float64(left) / n,
			Right: float64(right) / n,
		},
		DistributionFit: DistributionFit{
			Normal:   normal,
			StudentT: studentT,
		},
	}, nil
}

// fitNormal runs the closed-form maximum-likelihood normal fit.
func fitNormal(returns []float64) NormalFit {
	var dist distuv.Normal
	dist.Fit(returns, nil)
	return NormalFit{Mean: dist.Mu, Std: dist.Sigma}
}

// fitStudentT fits location-scale Student-t parameters by minimizing the
// negative log-likelihood over (log df, loc, log scale). Nelder-Mead runs
// first with a BFGS retry, the in-house convention for derivative-free fits.
func fitStudentT(returns []float64) (StudentTFit, error) {
	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)

	nll := func(x []float64) float64 {
		nu := math.Exp(x[0])
		sigma := math.Exp(x[2])
		if math.IsInf(nu, 0) || sigma == 0 || math.IsInf(sigma, 0) {
			return math.Inf(1)
		}
		dist := distuv.StudentsT{Mu: x[1], Sigma: sigma, Nu: nu}
		var sum float64
		for _, r := range returns {
			sum -= dist.LogProb(r)
		}
		if math.IsNaN(sum) {
			return math.Inf(1)
		}
		return sum
	}
	problem := optimize.Problem{Func: nll}

	// Moment-matched start: nu=4 makes the t variance nu/(nu-2)=2x scale^2.
	initial := []float64{math.Log(4), mean, math.Log(sd * math.Sqrt(0.5))}

	converged := func(s optimize.Status) bool {
		return s == optimize.Success || s == optimize.GradientThreshold || s == optimize.FunctionConvergence
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
		if err != nil {
			return StudentTFit{}, fmt.Errorf("risk: student-t fit failed: %w", err)
		}
		if !converged(result.Status) {
			return StudentTFit{}, fmt.Errorf("risk: student-t fit did not converge: status=%v", result.Status)
		}
	}

	fit := StudentTFit{
		DF:    math.Exp(result.X[0]),
		Loc:   result.X[1],
		Scale: math.Exp(result.X[2]),
	}
	for _, v := range []float64{fit.DF, fit.Loc, fit.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return StudentTFit{}, fmt.Errorf("risk: student-t fit produced non-finite parameters")
		}
	}
	if fit.Scale <= 0 || fit.DF <= 0 {
		return StudentTFit{}, fmt.Errorf("risk: student-t fit produced invalid parameters")
	}
	return fit, nil
}
