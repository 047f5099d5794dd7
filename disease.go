package pedcall

import (
	"fmt"
	"math"
	"strconv"

	"github.com/carbocation/pedcall/lattice"
	"github.com/carbocation/pedcall/mendel"
)

// NoDiseaseExplanation is the disease hypothesis under which no single allele
// explains the pattern of affected and unaffected members. Disease hypothesis
// a+1 names allele a as causal.
const NoDiseaseExplanation = 0

// MaxDiseaseAlleles bounds the alleles at a site the disease model accepts.
// Each member's lattice holds 2^n weights.
const MaxDiseaseAlleles = 16

// Explain returns the disease hypothesis of the first non-reference allele
// carried by exactly the diseased members of fam, given each member's
// genotype call, or NoDiseaseExplanation. Members of ploidy None are ignored.
func Explain(fam *Family, code mendel.Code, calls []int, ref int) int {
	for a := 0; a < code.RangeSize(); a++ {
		if a == ref {
			continue
		}
		if explains(fam, code, calls, a) {
			return a + 1
		}
	}
	return NoDiseaseExplanation
}

func explains(fam *Family, code mendel.Code, calls []int, allele int) bool {
	for i := 0; i < fam.Size(); i++ {
		member := fam.Member(i)
		if member.Ploidy == mendel.None {
			continue
		}
		if carries(code, member.Ploidy, calls[i], allele) != member.Diseased {
			return false
		}
	}
	return true
}

func carries(code mendel.Code, ploidy mendel.Ploidy, h, allele int) bool {
	switch ploidy {
	case mendel.Haploid:
		return code.Allele1(h) == allele
	case mendel.Diploid:
		return code.Allele1(h) == allele || code.Allele2(h) == allele
	default:
		return false
	}
}

// DiseasedFamilyPosterior weighs the genotype posteriors of a family with one
// affected parent against a dominant single-allele disease model. Each member
// becomes a lattice over the alleles that could be causal given that
// member's genotype and status; the family's lattices are combined by
// intersection.
type DiseasedFamilyPosterior struct {
	family *Family
	code   mendel.Code
	fp     *FamilyPosterior
	set    *lattice.BitSet
	arith  lattice.Arithmetic

	members  []*lattice.WeightedLattice
	initial  *lattice.WeightedLattice
	leaveOut []*lattice.WeightedLattice
	combined *lattice.WeightedLattice

	disease     *HypothesisScore
	childScores []*HypothesisScore
}

// NewDiseasedFamilyPosterior builds the disease model on top of fp, which must
// have been computed for fam and code.
func NewDiseasedFamilyPosterior(fam *Family, code mendel.Code, fp *FamilyPosterior, arith lattice.Arithmetic) (*DiseasedFamilyPosterior, error) {
	if err := fam.ValidateDisease(); err != nil {
		return nil, err
	}

	if code.RangeSize() > MaxDiseaseAlleles {
		return nil, fmt.Errorf("%d alleles, at most %d: %w", code.RangeSize(), MaxDiseaseAlleles, ErrTooManyAlleles)
	}

	names := make([]string, code.RangeSize())
	for a := range names {
		names[a] = strconv.Itoa(a)
	}
	set, err := lattice.NewBitSet(names...)
	if err != nil {
		return nil, fmt.Errorf("%d alleles: %w", code.RangeSize(), err)
	}

	d := &DiseasedFamilyPosterior{
		family:  fam,
		code:    code,
		fp:      fp,
		set:     set,
		arith:   arith,
		members: make([]*lattice.WeightedLattice, fam.Size()),
	}
	for i := range d.members {
		d.members[i] = d.memberLattice(i)
	}

	// The reference allele is never causal.
	mask := lattice.New(set, arith)
	full := set.Full()
	if ref := fp.Reference(); ref >= 0 && ref < set.Length() {
		full = set.Complement(set.Of(ref))
	}
	mask.Increment(full, arith.One())

	if d.initial, err = mask.Product(d.members[FatherIndex]); err != nil {
		return nil, err
	}
	if d.initial, err = d.initial.Product(d.members[MotherIndex]); err != nil {
		return nil, err
	}

	children := d.members[FirstChild:]
	if d.leaveOut, err = lattice.LeaveOneOut(d.initial, children); err != nil {
		return nil, err
	}
	if d.combined, err = d.leaveOut[0].Product(children[0]); err != nil {
		return nil, err
	}

	d.scoreDisease()
	d.scoreChildren()

	return d, nil
}

// memberLattice spreads member i's normalized marginal over the sets of
// alleles each of its genotypes leaves as candidate causes.
func (d *DiseasedFamilyPosterior) memberLattice(i int) *lattice.WeightedLattice {
	marginal := d.fp.Marginal(i)
	total := logSumExp(marginal)
	if marginal == nil || math.IsInf(total, -1) {
		return lattice.Identity(d.set, d.arith)
	}

	l := lattice.New(d.set, d.arith)
	member := d.family.Member(i)
	for h, v := range marginal {
		if math.IsInf(v, -1) {
			continue
		}
		l.Increment(d.consistent(member, h), d.arith.FromLog(v-total))
	}
	return l
}

// consistent is the set of alleles that could cause the disease given that
// member has genotype h: the alleles it carries if affected, the ones it
// lacks otherwise.
func (d *DiseasedFamilyPosterior) consistent(member Member, h int) lattice.Subset {
	var carried lattice.Subset
	switch member.Ploidy {
	case mendel.Haploid:
		carried = d.set.Of(d.code.Allele1(h))
	case mendel.Diploid:
		carried = d.set.Of(d.code.Allele1(h), d.code.Allele2(h))
	}
	if member.Diseased {
		return carried
	}
	return d.set.Complement(carried)
}

func (d *DiseasedFamilyPosterior) scoreDisease() {
	scores := make([]float64, d.set.Length()+1)
	scores[NoDiseaseExplanation] = d.arith.ToLog(d.combined.Weight(0))
	for a := 0; a < d.set.Length(); a++ {
		scores[a+1] = d.arith.ToLog(d.combined.Containing(a))
	}
	h, posterior := best(scores)
	d.disease = &HypothesisScore{Hypothesis: h, Posterior: posterior}
}

// scoreChildren rescores each child's genotypes by how much of the rest of
// the family's disease lattice each genotype leaves with a candidate cause.
func (d *DiseasedFamilyPosterior) scoreChildren() {
	d.childScores = make([]*HypothesisScore, len(d.family.Children))
	for k, child := range d.family.Children {
		marginal := d.fp.Marginal(FirstChild + k)
		if marginal == nil {
			continue
		}
		total := logSumExp(marginal)

		scores := make([]float64, len(marginal))
		for h, v := range marginal {
			scores[h] = math.Inf(-1)
			if math.IsInf(v, -1) {
				continue
			}
			p := d.arith.FromLog(v - total)
			cons := d.consistent(child, h)
			mass := d.arith.Zero()
			for s, w := range d.leaveOut[k].All() {
				if s&cons != 0 {
					mass = d.arith.Add(mass, d.arith.Multiply(w, p))
				}
			}
			scores[h] = d.arith.ToLog(mass)
		}
		h, posterior := best(scores)
		d.childScores[k] = &HypothesisScore{Hypothesis: h, Posterior: posterior}
	}
}

// Explanation applies Explain to the family's best calls.
func (d *DiseasedFamilyPosterior) Explanation(ref int) int {
	return Explain(d.family, d.code, d.fp.Calls(), ref)
}

// Disease is the best disease hypothesis, NoDiseaseExplanation or allele+1,
// with its log-odds against the other hypotheses.
func (d *DiseasedFamilyPosterior) Disease() *HypothesisScore {
	return d.disease
}

// ChildScores holds each child's best genotype under the disease model, nil
// for children of ploidy None.
func (d *DiseasedFamilyPosterior) ChildScores() []*HypothesisScore {
	return d.childScores
}

// Combined is the family's disease lattice.
func (d *DiseasedFamilyPosterior) Combined() *lattice.WeightedLattice {
	return d.combined
}
