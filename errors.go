package pedcall

import "errors"

var (
	// ErrInvalidPedigree is returned for a family that cannot be scored, such
	// as one without children or, in disease mode, one without exactly one
	// diseased parent.
	ErrInvalidPedigree = errors.New("pedcall: invalid pedigree")

	// ErrModelMismatch is returned when the models supplied do not line up with
	// the family members.
	ErrModelMismatch = errors.New("pedcall: models do not match family")

	// ErrReferenceMismatch is returned when family members disagree on the
	// reference hypothesis.
	ErrReferenceMismatch = errors.New("pedcall: reference hypothesis differs between members")

	// ErrTooManyAlleles is returned by the disease model for sites with more
	// than MaxDiseaseAlleles alleles.
	ErrTooManyAlleles = errors.New("pedcall: too many alleles for the disease model")
)
