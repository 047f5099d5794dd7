package pedcall

import (
	"fmt"

	"github.com/carbocation/pedcall/mendel"
)

// Positions of family members in the slices indexed by member.
const (
	FatherIndex = 0
	MotherIndex = 1
	FirstChild  = 2
)

// Member is one individual of a Family at a site.
type Member struct {
	ID       string
	Ploidy   mendel.Ploidy
	Diseased bool
}

// Family is a father, a mother and their children. Members are numbered
// father, mother, then children in order.
type Family struct {
	Father   Member
	Mother   Member
	Children []Member
}

func (f *Family) Size() int {
	return FirstChild + len(f.Children)
}

func (f *Family) Member(i int) Member {
	switch i {
	case FatherIndex:
		return f.Father
	case MotherIndex:
		return f.Mother
	default:
		return f.Children[i-FirstChild]
	}
}

// Validate checks that the family can be scored at all.
func (f *Family) Validate() error {
	if len(f.Children) == 0 {
		return fmt.Errorf("family of %s and %s has no children: %w", f.Father.ID, f.Mother.ID, ErrInvalidPedigree)
	}
	return nil
}

// ValidateDisease checks that exactly one parent is diseased, which the
// disease engine relies on.
func (f *Family) ValidateDisease() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Father.Diseased == f.Mother.Diseased {
		return fmt.Errorf("father diseased=%t, mother diseased=%t: %w", f.Father.Diseased, f.Mother.Diseased, ErrInvalidPedigree)
	}
	return nil
}

// DiseasedParent returns FatherIndex or MotherIndex for a family that passes
// ValidateDisease.
func (f *Family) DiseasedParent() int {
	if f.Father.Diseased {
		return FatherIndex
	}
	return MotherIndex
}
