package pedcall

import (
	"fmt"
	"math"

	"github.com/carbocation/pedcall/lattice"
	"github.com/carbocation/pedcall/mendel"
)

// ContraryFunc adjusts the log score of a child genotype for a given pair of
// parental genotypes, for evidence held outside the child's own model. child
// indexes Family.Children.
type ContraryFunc func(child, father, mother, h int) float64

type config struct {
	refPrior    float64
	nonRefPrior float64
	contrary    ContraryFunc
}

// Option configures a FamilyPosterior.
type Option func(*config)

// WithDenovoPriors enables de novo scoring with natural-log priors for a
// mutation arising from reference parents and from any other parents. A ref
// prior of -Inf leaves de novo scoring off, which is the default.
func WithDenovoPriors(ref, nonRef float64) Option {
	return func(c *config) {
		c.refPrior = ref
		c.nonRefPrior = nonRef
	}
}

func WithContrary(f ContraryFunc) Option {
	return func(c *config) {
		c.contrary = f
	}
}

// HypothesisScore is the call for one family member.
type HypothesisScore struct {
	Hypothesis int
	// Posterior is the log-odds of Hypothesis against every other hypothesis.
	Posterior float64

	// DenovoScored is set for children when de novo scoring is enabled.
	DenovoScored bool
	// Denovo marks a call that is not Mendelian given the parents' calls.
	Denovo bool
	// DenovoPosterior is the log-odds that the child carries a de novo
	// mutation.
	DenovoPosterior float64
}

// FamilyPosterior is the joint posterior over the genotypes of a family at a
// site, marginalized per member.
type FamilyPosterior struct {
	family    *Family
	code      mendel.Code
	models    []Model
	reference int

	marginals   [][]float64
	total       float64
	identity    float64
	nonIdentity float64
	denovo      []float64
	nonDenovo   []float64
	scores      []*HypothesisScore
}

// NewFamilyPosterior scores every combination of parental genotypes and, for
// each, every child genotype. models holds one Model per member in Family
// order.
func NewFamilyPosterior(fam *Family, code mendel.Code, models []Model, opts ...Option) (*FamilyPosterior, error) {
	cfg := &config{
		refPrior:    math.Inf(-1),
		nonRefPrior: math.Inf(-1),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := fam.Validate(); err != nil {
		return nil, err
	}
	if len(models) != fam.Size() {
		return nil, fmt.Errorf("%d models for %d members: %w", len(models), fam.Size(), ErrModelMismatch)
	}

	fp := &FamilyPosterior{
		family:      fam,
		code:        code,
		models:      models,
		reference:   mendel.Missing,
		marginals:   make([][]float64, fam.Size()),
		total:       math.Inf(-1),
		identity:    math.Inf(-1),
		nonIdentity: math.Inf(-1),
		denovo:      make([]float64, len(fam.Children)),
		nonDenovo:   make([]float64, len(fam.Children)),
		scores:      make([]*HypothesisScore, fam.Size()),
	}
	for i, m := range models {
		member := fam.Member(i)
		if m.Ploidy() != member.Ploidy {
			return nil, fmt.Errorf("%s is %s but its model is %s: %w", member.ID, member.Ploidy, m.Ploidy(), ErrModelMismatch)
		}
		if n := code.Size(member.Ploidy); m.HypothesisCount() != n {
			return nil, fmt.Errorf("%s has %d hypotheses, the site has %d: %w", member.ID, m.HypothesisCount(), n, ErrModelMismatch)
		}
		if m.HypothesisCount() == 0 {
			continue
		}
		if fp.reference == mendel.Missing {
			fp.reference = m.ReferenceIndex()
		} else if m.ReferenceIndex() != fp.reference {
			return nil, fmt.Errorf("%s has reference %d, expected %d: %w", member.ID, m.ReferenceIndex(), fp.reference, ErrReferenceMismatch)
		}
		fp.marginals[i] = make([]float64, m.HypothesisCount())
		for h := range fp.marginals[i] {
			fp.marginals[i][h] = math.Inf(-1)
		}
	}
	for i := range fp.denovo {
		fp.denovo[i] = math.Inf(-1)
		fp.nonDenovo[i] = math.Inf(-1)
	}

	if err := fp.compute(cfg); err != nil {
		return nil, err
	}
	return fp, nil
}

// childState is the per-child scratch space of one parental pair.
type childState struct {
	index    int
	combiner *mendel.Combiner
	lls      []float64
	local    []float64
	denovo   []bool
}

func (fp *FamilyPosterior) compute(cfg *config) error {
	fam := fp.family

	var children []*childState
	for i, child := range fam.Children {
		if child.Ploidy == mendel.None {
			continue
		}
		table, err := mendel.Lookup(fam.Father.Ploidy, fam.Mother.Ploidy, child.Ploidy)
		if err != nil {
			return fmt.Errorf("child %s: %w", child.ID, err)
		}
		model := fp.models[FirstChild+i]
		children = append(children, &childState{
			index:    i,
			combiner: mendel.NewCombiner(table, fp.code, fp.reference, cfg.refPrior, cfg.nonRefPrior),
			lls:      likelihoods(model),
			local:    make([]float64, model.HypothesisCount()),
			denovo:   make([]bool, model.HypothesisCount()),
		})
	}

	fatherLLs := likelihoods(fp.models[FatherIndex])
	motherLLs := likelihoods(fp.models[MotherIndex])

	n := len(children)
	r := make([]float64, n)
	forward := make([]float64, n+1)
	reverse := make([]float64, n+1)

	for _, f := range hypotheses(fatherLLs) {
		lf := likelihoodAt(fatherLLs, f)
		if math.IsInf(lf, -1) {
			continue
		}
		for _, m := range hypotheses(motherLLs) {
			lm := likelihoodAt(motherLLs, m)
			if math.IsInf(lm, -1) {
				continue
			}
			base := lf + lm

			for k, c := range children {
				for h, ll := range c.lls {
					p, denovo := c.combiner.Transmission(f, m, h)
					v := ll + p
					if cfg.contrary != nil {
						v += cfg.contrary(c.index, f, m, h)
					}
					c.local[h] = v
					c.denovo[h] = denovo
				}
				r[k] = logSumExp(c.local)
			}

			// forward[k] sums the children before k, reverse[k] those from k on.
			for k := 0; k < n; k++ {
				forward[k+1] = forward[k] + r[k]
			}
			for k := n - 1; k >= 0; k-- {
				reverse[k] = reverse[k+1] + r[k]
			}

			joint := base + forward[n]
			fp.total = lattice.LogAdd(fp.total, joint)
			if f != mendel.Missing {
				fp.marginals[FatherIndex][f] = lattice.LogAdd(fp.marginals[FatherIndex][f], joint)
			}
			if m != mendel.Missing {
				fp.marginals[MotherIndex][m] = lattice.LogAdd(fp.marginals[MotherIndex][m], joint)
			}

			if fp.isReference(f) && fp.isReference(m) {
				identity := base
				for _, c := range children {
					identity += c.local[fp.reference]
				}
				fp.identity = lattice.LogAdd(fp.identity, identity)
				fp.nonIdentity = lattice.LogAdd(fp.nonIdentity, lattice.LogSub(joint, identity))
			} else {
				fp.nonIdentity = lattice.LogAdd(fp.nonIdentity, joint)
			}

			for k, c := range children {
				others := base + forward[k] + reverse[k+1]
				marginal := fp.marginals[FirstChild+c.index]
				enabled := c.combiner.DenovoEnabled()
				for h, v := range c.local {
					contribution := others + v
					marginal[h] = lattice.LogAdd(marginal[h], contribution)
					if !enabled {
						continue
					}
					if c.denovo[h] {
						fp.denovo[c.index] = lattice.LogAdd(fp.denovo[c.index], contribution)
					} else {
						fp.nonDenovo[c.index] = lattice.LogAdd(fp.nonDenovo[c.index], contribution)
					}
				}
			}
		}
	}

	for i, marginal := range fp.marginals {
		if marginal == nil {
			continue
		}
		h, posterior := best(marginal)
		fp.scores[i] = &HypothesisScore{Hypothesis: h, Posterior: posterior}
	}

	father, mother := fp.call(FatherIndex), fp.call(MotherIndex)
	for _, c := range children {
		if !c.combiner.DenovoEnabled() {
			continue
		}
		score := fp.scores[FirstChild+c.index]
		score.DenovoScored = true
		score.Denovo = c.combiner.IsDenovo(father, mother, score.Hypothesis)
		score.DenovoPosterior = logOdds(fp.denovo[c.index], fp.nonDenovo[c.index])
	}

	return nil
}

func (fp *FamilyPosterior) isReference(h int) bool {
	return h == fp.reference || h == mendel.Missing
}

// call is the best hypothesis of member i, or mendel.Missing if it has none.
func (fp *FamilyPosterior) call(i int) int {
	if fp.scores[i] == nil {
		return mendel.Missing
	}
	return fp.scores[i].Hypothesis
}

// Calls returns the best hypothesis of every member, mendel.Missing for
// members with ploidy None.
func (fp *FamilyPosterior) Calls() []int {
	out := make([]int, len(fp.scores))
	for i := range out {
		out[i] = fp.call(i)
	}
	return out
}

// Score returns the call for member i, nil for members with ploidy None.
func (fp *FamilyPosterior) Score(i int) *HypothesisScore {
	return fp.scores[i]
}

func (fp *FamilyPosterior) Scores() []*HypothesisScore {
	return fp.scores
}

// Marginal returns the unnormalized log marginal of every hypothesis of
// member i, nil for members with ploidy None.
func (fp *FamilyPosterior) Marginal(i int) []float64 {
	return fp.marginals[i]
}

// Total is the log of the summed joint mass over all hypotheses.
func (fp *FamilyPosterior) Total() float64 {
	return fp.total
}

// Reference is the shared reference hypothesis of the family.
func (fp *FamilyPosterior) Reference() int {
	return fp.reference
}

// NonIdentityPosterior is the log-odds that at least one member differs from
// the reference.
func (fp *FamilyPosterior) NonIdentityPosterior() float64 {
	return logOdds(fp.nonIdentity, fp.identity)
}

// DenovoPosterior is the log-odds that child (indexing Family.Children)
// carries a de novo mutation. It is zero when de novo scoring is off.
func (fp *FamilyPosterior) DenovoPosterior(child int) float64 {
	return logOdds(fp.denovo[child], fp.nonDenovo[child])
}

func likelihoods(m Model) []float64 {
	out := make([]float64, m.HypothesisCount())
	for h := range out {
		out[h] = m.LogLikelihood(h)
	}
	return out
}

// hypotheses lists the genotypes to iterate for a parent; a parent without
// any takes the single Missing genotype.
func hypotheses(lls []float64) []int {
	if len(lls) == 0 {
		return []int{mendel.Missing}
	}
	out := make([]int, len(lls))
	for i := range out {
		out[i] = i
	}
	return out
}

func likelihoodAt(lls []float64, h int) float64 {
	if h == mendel.Missing {
		return 0
	}
	return lls[h]
}
