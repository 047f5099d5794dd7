package mendel

import "math"

// Combiner scores a transmission with its Mendelian probability, falling back
// to a de novo explanation when the transmission is not Mendelian and de novo
// calling is enabled.
type Combiner struct {
	table       *Table
	code        Code
	reference   int
	refPrior    float64
	nonRefPrior float64
}

// NewCombiner wraps table for the site described by code. refPrior and
// nonRefPrior are natural-log de novo priors applied when both parents are
// the reference genotype and otherwise; a refPrior of -Inf disables de novo
// scoring entirely.
func NewCombiner(table *Table, code Code, reference int, refPrior, nonRefPrior float64) *Combiner {
	return &Combiner{
		table:       table,
		code:        code,
		reference:   reference,
		refPrior:    refPrior,
		nonRefPrior: nonRefPrior,
	}
}

func (c *Combiner) Table() *Table {
	return c.table
}

// DenovoEnabled reports whether non-Mendelian transmissions can score above
// -Inf.
func (c *Combiner) DenovoEnabled() bool {
	return !math.IsInf(c.refPrior, -1)
}

// LogProbability is the log probability of the child genotype given the
// parental genotypes.
func (c *Combiner) LogProbability(father, mother, child int) float64 {
	p, _ := c.Transmission(father, mother, child)
	return p
}

// Transmission returns LogProbability together with IsDenovo.
func (c *Combiner) Transmission(father, mother, child int) (float64, bool) {
	mendelian, denovo := c.table.Probabilities(c.code, father, mother, child)
	if !math.IsInf(mendelian, -1) {
		return mendelian, false
	}
	if !c.DenovoEnabled() {
		return mendelian, true
	}
	if c.isReference(father) && c.isReference(mother) {
		return denovo + c.refPrior, true
	}
	return denovo + c.nonRefPrior, true
}

// IsDenovo reports whether the transmission needs a mutation.
func (c *Combiner) IsDenovo(father, mother, child int) bool {
	return math.IsInf(c.table.Mendelian(c.code, father, mother, child), -1)
}

func (c *Combiner) isReference(h int) bool {
	return h == c.reference || h == Missing
}
