package lattice

import "errors"

var (
	// ErrTooManyElements is returned when a universe has more labels than a
	// Subset can address.
	ErrTooManyElements = errors.New("lattice: too many elements in universe")

	// ErrDuplicateElement is returned when a universe repeats a label.
	ErrDuplicateElement = errors.New("lattice: duplicate element in universe")

	// ErrUniverseMismatch is returned when combining lattices over different
	// universes or arithmetics.
	ErrUniverseMismatch = errors.New("lattice: lattices do not share a universe")

	// ErrInconsistentProduct is returned when the forward and backward sweeps of
	// LeaveOneOut disagree.
	ErrInconsistentProduct = errors.New("lattice: forward and backward products disagree")

	// ErrUnknownArithmetic is returned by ArithmeticByName.
	ErrUnknownArithmetic = errors.New("lattice: unknown arithmetic")
)
