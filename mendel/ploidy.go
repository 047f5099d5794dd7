package mendel

// Ploidy is the number of copies of a locus an individual carries at a site.
type Ploidy uint8

const (
	None Ploidy = iota
	Haploid
	Diploid
)

// Count is the number of allele slots a genotype of this ploidy occupies.
func (p Ploidy) Count() int {
	switch p {
	case Haploid:
		return 1
	case Diploid:
		return 2
	default:
		return 0
	}
}

func (p Ploidy) String() string {
	switch p {
	case None:
		return "none"
	case Haploid:
		return "haploid"
	case Diploid:
		return "diploid"

	default:
		return "Illegal selection"
	}
}

// Letter is the one character tag used when naming ploidy triples.
func (p Ploidy) Letter() byte {
	switch p {
	case Haploid:
		return 'H'
	case Diploid:
		return 'D'
	default:
		return 'N'
	}
}

// Triple identifies the ploidy of father, mother and child at a site. Each
// supported Triple owns one transmission Table.
type Triple struct {
	Father Ploidy
	Mother Ploidy
	Child  Ploidy
}

func (t Triple) String() string {
	return string([]byte{t.Father.Letter(), t.Mother.Letter(), t.Child.Letter()})
}

// slots is the number of canonical allele positions in a (father, mother,
// child) pattern for this triple.
func (t Triple) slots() int {
	return t.Father.Count() + t.Mother.Count() + t.Child.Count()
}

// supported reports whether genotypes can be transmitted under t. A diploid
// child needs a gamete from each parent; a haploid child needs at least one
// parent; a child with no copies has nothing to inherit and is never scored.
func (t Triple) supported() bool {
	if t.Father == None && t.Mother == None {
		return false
	}
	switch t.Child {
	case Diploid:
		return t.Father != None && t.Mother != None
	case Haploid:
		return true
	default:
		return false
	}
}
