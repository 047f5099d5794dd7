package lattice

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

// WeightedLattice assigns a weight to every subset of a universe. Combining
// two lattices with Product gives the subset s∩t the product of the weights of
// s and t, summed over all pairs.
type WeightedLattice struct {
	set     *BitSet
	arith   Arithmetic
	weights []float64
}

// New returns a lattice with every weight zero.
func New(set *BitSet, arith Arithmetic) *WeightedLattice {
	w := make([]float64, set.Subsets())
	zero := arith.Zero()
	for i := range w {
		w[i] = zero
	}
	return &WeightedLattice{set: set, arith: arith, weights: w}
}

// Identity returns the lattice with weight one on the full universe and zero
// elsewhere. It is the neutral element of Product.
func Identity(set *BitSet, arith Arithmetic) *WeightedLattice {
	l := New(set, arith)
	l.weights[set.Full()] = arith.One()
	return l
}

func (l *WeightedLattice) Set() *BitSet {
	return l.set
}

func (l *WeightedLattice) Arithmetic() Arithmetic {
	return l.arith
}

func (l *WeightedLattice) Weight(s Subset) float64 {
	return l.weights[s]
}

// Increment adds w to the weight of s.
func (l *WeightedLattice) Increment(s Subset, w float64) {
	if !l.arith.IsValid(w) {
		panic(fmt.Sprintf("lattice: invalid %s weight %v", l.arith.Name(), w))
	}
	l.weights[s] = l.arith.Add(l.weights[s], w)
}

// All yields every subset with a non-zero weight, in increasing subset order.
// The sequence can be ranged over any number of times.
func (l *WeightedLattice) All() iter.Seq2[Subset, float64] {
	return func(yield func(Subset, float64) bool) {
		for i, w := range l.weights {
			if l.arith.IsZero(w) {
				continue
			}
			if !yield(Subset(i), w) {
				return
			}
		}
	}
}

// Total is the sum of all weights.
func (l *WeightedLattice) Total() float64 {
	total := l.arith.Zero()
	for _, w := range l.All() {
		total = l.arith.Add(total, w)
	}
	return total
}

// Containing is the sum of the weights of every subset holding element i.
func (l *WeightedLattice) Containing(i int) float64 {
	total := l.arith.Zero()
	for s, w := range l.All() {
		if s.Contains(i) {
			total = l.arith.Add(total, w)
		}
	}
	return total
}

// Product combines l and o by intersection.
func (l *WeightedLattice) Product(o *WeightedLattice) (*WeightedLattice, error) {
	if l.set != o.set || l.arith != o.arith {
		return nil, ErrUniverseMismatch
	}
	out := New(l.set, l.arith)
	for s, a := range l.All() {
		for t, b := range o.All() {
			st := s & t
			out.weights[st] = l.arith.Add(out.weights[st], l.arith.Multiply(a, b))
		}
	}
	return out, nil
}

// Equal reports whether every weight of l and o agrees within tol, relative
// to the weight's magnitude when that exceeds one.
func (l *WeightedLattice) Equal(o *WeightedLattice, tol float64) bool {
	if l.set != o.set || l.arith != o.arith {
		return false
	}
	for i, a := range l.weights {
		b := o.weights[i]
		if a == b {
			continue
		}
		if math.IsInf(a, 0) || math.IsInf(b, 0) {
			return false
		}
		if math.Abs(a-b) > tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b))) {
			return false
		}
	}
	return true
}

func (l *WeightedLattice) String() string {
	var sb strings.Builder
	for s, w := range l.All() {
		fmt.Fprintf(&sb, "%s:%.4g ", l.set.String(s), l.arith.Probability(w))
	}
	return strings.TrimSpace(sb.String())
}
