package pedcall

import (
	"fmt"
	"math"
	"strconv"

	"github.com/carbocation/pedcall/mendel"
)

// SegregationPrecision is the number of decimals FormatSegregation keeps.
const SegregationPrecision = 3

// maxCanonical bounds the canonical allele ids seen by Segregation: four
// parental slots plus two child slots.
const maxCanonical = 6

// Segregation measures how well the diploid children of a family fit the
// Mendelian expectation for the parents' called genotypes, as a multinomial
// log-likelihood over canonical child genotypes. With a haploid parent the
// expectation is the haploid×diploid slice of the tables, otherwise the
// diploid×diploid one.
type Segregation struct {
	code   mendel.Code
	table  *mendel.Table
	father mendel.Ploidy
	mother mendel.Ploidy
	fCall  int
	mCall  int

	counts [maxCanonical * maxCanonical]int
	logp   [maxCanonical * maxCanonical]float64
	total  int
}

// NewSegregation fixes the parental calls. Both parents must have a call.
func NewSegregation(code mendel.Code, fatherPloidy mendel.Ploidy, father int, motherPloidy mendel.Ploidy, mother int) (*Segregation, error) {
	if fatherPloidy == mendel.None || motherPloidy == mendel.None {
		return nil, fmt.Errorf("segregation needs both parents, got %s and %s: %w", fatherPloidy, motherPloidy, mendel.ErrUnsupportedPloidy)
	}
	table, err := mendel.Lookup(fatherPloidy, motherPloidy, mendel.Diploid)
	if err != nil {
		return nil, err
	}
	return &Segregation{
		code:   code,
		table:  table,
		father: fatherPloidy,
		mother: motherPloidy,
		fCall:  father,
		mCall:  mother,
	}, nil
}

// Add counts one diploid child genotype.
func (s *Segregation) Add(child int) {
	key := s.key(child)
	s.counts[key]++
	s.logp[key] = s.table.Mendelian(s.code, s.fCall, s.mCall, child)
	s.total++
}

// key canonicalizes the child's alleles after the parents' so that children
// with the same relationship to their parents share a category.
func (s *Segregation) key(child int) int {
	uid := mendel.NewUniqueID(s.code.RangeSize())
	uid.AddID(s.code.Allele1(s.fCall))
	if s.father == mendel.Diploid {
		uid.AddID(s.code.Allele2(s.fCall))
	}
	uid.AddID(s.code.Allele1(s.mCall))
	if s.mother == mendel.Diploid {
		uid.AddID(s.code.Allele2(s.mCall))
	}
	a, b := uid.AddID(s.code.Allele1(child)), uid.AddID(s.code.Allele2(child))
	if a > b {
		a, b = b, a
	}
	return a*maxCanonical + b
}

// Total is the number of children added.
func (s *Segregation) Total() int {
	return s.total
}

// LogLikelihood is log(n!) - Σ log(count!) + Σ count·log(p) over the observed
// child categories.
func (s *Segregation) LogLikelihood() float64 {
	ll := logFactorial(s.total)
	for key, n := range s.counts {
		if n == 0 {
			continue
		}
		ll += float64(n)*s.logp[key] - logFactorial(n)
	}
	return ll
}

func logFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}

// FormatSegregation renders a segregation log-likelihood for output records.
func FormatSegregation(v float64) string {
	return strconv.FormatFloat(v, 'f', SegregationPrecision, 64)
}
