package pedcall

import (
	"fmt"
	"strings"

	"github.com/carbocation/pedcall/mendel"
)

// Sex decides ploidy on the sex chromosomes.
type Sex uint8

const (
	SexUnknown Sex = iota
	Male
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// ParseSex accepts the words male/female, their initials, and the PED codes
// 1 and 2. Anything else, including 0, is unknown.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "1":
		return Male, nil
	case "female", "f", "2":
		return Female, nil
	case "", "unknown", "0":
		return SexUnknown, nil
	}
	return SexUnknown, fmt.Errorf("unrecognized sex %q", s)
}

// ChromosomeName takes the raw chromosome code used by genotype files and
// returns its standard string translation.
func ChromosomeName(chr uint16) string {
	switch {
	case chr >= 1 && chr <= 22:
		return fmt.Sprintf("%02d", chr)
	case chr == 23:
		return "0X"
	case chr == 24:
		return "0Y"
	case chr == 253:
		return "XY"
	case chr == 254:
		return "MT"
	}
	return "NA"
}

// PloidyOn is the ploidy of an individual of the given sex on chromosome.
// Individuals of unknown sex are treated as female on X and as lacking Y.
func PloidyOn(chromosome string, sex Sex) mendel.Ploidy {
	switch normalizeChromosome(chromosome) {
	case "X":
		if sex == Male {
			return mendel.Haploid
		}
		return mendel.Diploid
	case "Y":
		if sex == Male {
			return mendel.Haploid
		}
		return mendel.None
	case "MT", "M":
		return mendel.Haploid
	}
	return mendel.Diploid
}

func normalizeChromosome(chromosome string) string {
	c := strings.ToUpper(strings.TrimSpace(chromosome))
	c = strings.TrimPrefix(c, "CHR")
	c = strings.TrimLeft(c, "0")
	return c
}
