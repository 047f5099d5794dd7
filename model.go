// Package pedcall calls genotypes jointly across a nuclear family at a single
// site, given each member's own genotype likelihoods.
package pedcall

import (
	"math"

	"github.com/carbocation/pedcall/mendel"
	"gonum.org/v1/gonum/floats"
)

// Model supplies one individual's genotype likelihoods at a site.
type Model interface {
	HypothesisCount() int
	ReferenceIndex() int
	Ploidy() mendel.Ploidy
	LogLikelihood(h int) float64
	BestSingleHypothesis() (int, float64)
}

// LikelihoodModel is a Model over a fixed slice of natural-log likelihoods.
type LikelihoodModel struct {
	ploidy    mendel.Ploidy
	reference int
	lls       []float64
}

func NewLikelihoodModel(ploidy mendel.Ploidy, reference int, lls []float64) *LikelihoodModel {
	return &LikelihoodModel{
		ploidy:    ploidy,
		reference: reference,
		lls:       lls,
	}
}

func (m *LikelihoodModel) HypothesisCount() int { return len(m.lls) }

func (m *LikelihoodModel) ReferenceIndex() int { return m.reference }

func (m *LikelihoodModel) Ploidy() mendel.Ploidy { return m.ploidy }

func (m *LikelihoodModel) LogLikelihood(h int) float64 { return m.lls[h] }

// BestSingleHypothesis is the call this individual would get on its own, with
// the log-odds of that call against all others.
func (m *LikelihoodModel) BestSingleHypothesis() (int, float64) {
	return best(m.lls)
}

// logSumExp is log(Σ exp(v)); -Inf for an empty or all -Inf slice.
func logSumExp(v []float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}
	return floats.LogSumExp(v)
}

// logOdds is a - b, taken as even odds when neither side has any mass.
func logOdds(a, b float64) float64 {
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return 0
	}
	return a - b
}

// best returns the index of the largest entry of marginal (the lowest such
// index on ties) and its log-odds against the remaining entries.
func best(marginal []float64) (int, float64) {
	if len(marginal) == 0 {
		return mendel.Missing, 0
	}
	top := floats.MaxIdx(marginal)
	rest := make([]float64, 0, len(marginal)-1)
	rest = append(rest, marginal[:top]...)
	rest = append(rest, marginal[top+1:]...)
	return top, logOdds(marginal[top], logSumExp(rest))
}
