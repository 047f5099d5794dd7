package mendel

// Code maps a genotype hypothesis index to its alleles.
type Code interface {
	Allele1(h int) int
	Allele2(h int) int
	IsHomozygous(h int) bool
	RangeSize() int
	Size(p Ploidy) int
}

// DiploidCode enumerates the unordered genotypes over n alleles. The first n
// hypotheses are the homozygotes 0/0, 1/1, ... so that a haploid individual
// uses hypotheses [0, n) with the same code. Heterozygotes a/b with a < b
// follow, ordered by b and then by a.
type DiploidCode struct {
	n      int
	first  []int
	second []int
}

// NewDiploidCode builds the code for a site with nAlleles alleles, the
// reference being allele 0.
func NewDiploidCode(nAlleles int) *DiploidCode {
	size := Choose(nAlleles+1, 2)
	c := &DiploidCode{
		n:      nAlleles,
		first:  make([]int, 0, size),
		second: make([]int, 0, size),
	}
	for a := 0; a < nAlleles; a++ {
		c.first = append(c.first, a)
		c.second = append(c.second, a)
	}
	for b := 1; b < nAlleles; b++ {
		for a := 0; a < b; a++ {
			c.first = append(c.first, a)
			c.second = append(c.second, b)
		}
	}
	return c
}

func (c *DiploidCode) Allele1(h int) int { return c.first[h] }

func (c *DiploidCode) Allele2(h int) int { return c.second[h] }

func (c *DiploidCode) IsHomozygous(h int) bool { return h < c.n }

// RangeSize is the number of alleles at the site.
func (c *DiploidCode) RangeSize() int { return c.n }

// Size is the number of hypotheses an individual of ploidy p has at the site.
func (c *DiploidCode) Size(p Ploidy) int {
	switch p {
	case Haploid:
		return c.n
	case Diploid:
		return len(c.first)
	default:
		return 0
	}
}

// Hypothesis returns the index of the genotype a/b, in either order.
func (c *DiploidCode) Hypothesis(a, b int) int {
	if a == b {
		return a
	}
	if a > b {
		a, b = b, a
	}
	return c.n + b*(b-1)/2 + a
}

// Choose from n items can be done in this many ways. Originally derived from
// github.com/limix/bgen /src/util/choose.c
func Choose(n, k int) int {
	if n == 3 && k == 1 {
		// Fastest path, since this is the usual result
		return 3
	} else if k == 1 {
		return n
	}

	ans := 1

	if k > n-k {
		k = n - k
	}

	for j := 1; j <= k; j++ {
		if n%j == 0 {
			ans *= n / j
		} else if ans%j == 0 {
			ans = ans / j * n
		} else {
			ans = (ans * n) / j
		}

		n--
	}

	return ans
}
