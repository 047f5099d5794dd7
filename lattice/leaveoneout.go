package lattice

import "fmt"

// Tolerance bounds the disagreement allowed between the forward and backward
// sweeps of LeaveOneOut.
const Tolerance = 1e-4

// LeaveOneOut returns, for every i, the product of initial with every lattice
// except lattices[i]. A forward sweep of running products from initial and a
// backward sweep from the identity give all n results from 3n products.
func LeaveOneOut(initial *WeightedLattice, lattices []*WeightedLattice) ([]*WeightedLattice, error) {
	n := len(lattices)
	var err error

	forward := make([]*WeightedLattice, n+1)
	forward[0] = initial
	for i, l := range lattices {
		if forward[i+1], err = forward[i].Product(l); err != nil {
			return nil, fmt.Errorf("forward %d: %w", i, err)
		}
	}

	backward := make([]*WeightedLattice, n+1)
	backward[n] = Identity(initial.set, initial.arith)
	for i := n - 1; i >= 0; i-- {
		if backward[i], err = lattices[i].Product(backward[i+1]); err != nil {
			return nil, fmt.Errorf("backward %d: %w", i, err)
		}
	}

	full, err := initial.Product(backward[0])
	if err != nil {
		return nil, err
	}
	if !forward[n].Equal(full, Tolerance) {
		return nil, fmt.Errorf("%s versus %s: %w", forward[n], full, ErrInconsistentProduct)
	}

	out := make([]*WeightedLattice, n)
	for i := range out {
		if out[i], err = forward[i].Product(backward[i+1]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
