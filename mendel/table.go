package mendel

import (
	"fmt"
	"math"
)

// Missing stands in for the genotype of a parent with ploidy None.
const Missing = -1

// Table holds natural-log transmission probabilities for one ploidy Triple,
// indexed by the canonical pattern of the father's, mother's and child's
// alleles (in that order). Alongside every Mendelian value sits a de novo
// value for patterns that no transmission can produce.
//
// A pattern of n allele slots is stored at the mixed-radix offset whose k-th
// digit has base k+1; canonical ids never exceed their slot position so each
// pattern has a distinct offset below n!.
type Table struct {
	triple    Triple
	slots     int
	mendelian []float64
	denovo    []float64
}

// tables is indexed by [father][mother][child] ploidy and is built once during
// package initialization. It is never written afterwards.
var tables = buildTables()

func buildTables() [3][3][3]*Table {
	var out [3][3][3]*Table
	for _, t := range Supported() {
		out[t.Father][t.Mother][t.Child] = newTable(t)
	}
	return out
}

// Supported lists every ploidy Triple that has a table.
func Supported() []Triple {
	var out []Triple
	for _, f := range []Ploidy{None, Haploid, Diploid} {
		for _, m := range []Ploidy{None, Haploid, Diploid} {
			for _, c := range []Ploidy{None, Haploid, Diploid} {
				if t := (Triple{f, m, c}); t.supported() {
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// Lookup returns the table for the given ploidies.
func Lookup(father, mother, child Ploidy) (*Table, error) {
	if father > Diploid || mother > Diploid || child > Diploid {
		return nil, fmt.Errorf("%d/%d/%d: %w", father, mother, child, ErrUnsupportedPloidy)
	}
	t := tables[father][mother][child]
	if t == nil {
		return nil, fmt.Errorf("%s: %w", Triple{father, mother, child}, ErrUnsupportedPloidy)
	}
	return t, nil
}

func (t *Table) Triple() Triple {
	return t.triple
}

// Mendelian is the log probability that the parents, with genotypes father and
// mother, transmit the genotype child. Parents of ploidy None take Missing.
func (t *Table) Mendelian(code Code, father, mother, child int) float64 {
	return t.mendelian[t.offset(code, father, mother, child)]
}

// Denovo is the log density of child arising from the parents through a
// single mutation, spread uniformly over the other alleles at the site. It is
// -Inf for transmissions that need no mutation.
func (t *Table) Denovo(code Code, father, mother, child int) float64 {
	return t.denovoAt(code, t.offset(code, father, mother, child))
}

// Probabilities returns both the Mendelian and de novo values for one
// transmission with a single canonicalization.
func (t *Table) Probabilities(code Code, father, mother, child int) (mendelian, denovo float64) {
	off := t.offset(code, father, mother, child)
	return t.mendelian[off], t.denovoAt(code, off)
}

func (t *Table) denovoAt(code Code, off int) float64 {
	alternates := code.RangeSize() - 1
	if alternates < 1 {
		return math.Inf(-1)
	}
	return t.denovo[off] - math.Log(float64(alternates))
}

// offset canonicalizes the alleles of the three genotypes and returns the
// position of their pattern in the table.
func (t *Table) offset(code Code, father, mother, child int) int {
	p := pattern{uid: NewUniqueID(code.RangeSize())}
	p.add(code, t.triple.Father, father)
	p.add(code, t.triple.Mother, mother)
	p.add(code, t.triple.Child, child)
	if p.uid.NumberIDsSoFar() > t.slots {
		panic(fmt.Sprintf("mendel: %d canonical ids for a %d slot table", p.uid.NumberIDsSoFar(), t.slots))
	}
	return p.offset
}

type pattern struct {
	uid    *UniqueID
	offset int
	k      int
}

func (p *pattern) add(code Code, ploidy Ploidy, h int) {
	switch ploidy {
	case Haploid:
		p.push(p.uid.AddID(code.Allele1(h)))
	case Diploid:
		p.push(p.uid.AddID(code.Allele1(h)))
		p.push(p.uid.AddID(code.Allele2(h)))
	}
}

func (p *pattern) push(id int) {
	p.k++
	p.offset = p.offset*p.k + id
}

func encode(ids []int) int {
	off := 0
	for k, id := range ids {
		off = off*(k+1) + id
	}
	return off
}

func newTable(triple Triple) *Table {
	n := triple.slots()
	size := 1
	for k := 2; k <= n; k++ {
		size *= k
	}

	t := &Table{
		triple:    triple,
		slots:     n,
		mendelian: make([]float64, size),
		denovo:    make([]float64, size),
	}
	for i := range t.mendelian {
		t.mendelian[i] = math.Inf(-1)
		t.denovo[i] = math.Inf(-1)
	}

	ids := make([]int, n)
	var walk func(k, distinct int)
	walk = func(k, distinct int) {
		if k == n {
			off := encode(ids)
			p := segregate(triple, ids)
			t.mendelian[off] = math.Log(p)
			if p == 0 {
				t.denovo[off] = math.Log(redistribute(triple, ids))
			}
			return
		}
		for id := 0; id <= distinct; id++ {
			ids[k] = id
			next := distinct
			if id == distinct {
				next++
			}
			walk(k+1, next)
		}
	}
	walk(0, 0)

	return t
}

type gamete struct {
	allele int
	p      float64
}

func gametes(alleles []int) []gamete {
	switch len(alleles) {
	case 1:
		return []gamete{{alleles[0], 1}}
	case 2:
		return []gamete{{alleles[0], 0.5}, {alleles[1], 0.5}}
	default:
		return nil
	}
}

// segregate is the probability that the parents in ids transmit the child in
// ids. ids need not be canonical.
func segregate(triple Triple, ids []int) float64 {
	fc, mc := triple.Father.Count(), triple.Mother.Count()
	fa, ma, ca := ids[:fc], ids[fc:fc+mc], ids[fc+mc:]

	var p float64
	switch triple.Child {
	case Diploid:
		for _, x := range gametes(fa) {
			for _, y := range gametes(ma) {
				if (x.allele == ca[0] && y.allele == ca[1]) || (x.allele == ca[1] && y.allele == ca[0]) {
					p += x.p * y.p
				}
			}
		}
	case Haploid:
		src := ma
		if triple.Mother == None {
			src = fa
		}
		for _, x := range gametes(src) {
			if x.allele == ca[0] {
				p += x.p
			}
		}
	}
	return p
}

// redistribute sums the Mendelian probability of every child that differs
// from the one in ids at exactly one allele position, then halves it since
// either allele position may carry the mutation. The halving applies to
// haploid children too; it is a single-nucleotide approximation, not an exact
// mutation model.
func redistribute(triple Triple, ids []int) float64 {
	parents := triple.Father.Count() + triple.Mother.Count()
	maxID := 0
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
	}

	alt := append([]int(nil), ids...)
	var total float64
	for pos := parents; pos < len(ids); pos++ {
		for x := 0; x <= maxID; x++ {
			if x == ids[pos] {
				continue
			}
			alt[pos] = x
			total += segregate(triple, alt)
		}
		alt[pos] = ids[pos]
	}
	return total / 2
}
