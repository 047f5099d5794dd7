package lattice

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// MaxElements is the largest universe a Subset can describe.
const MaxElements = 31

// Subset is a set of universe elements, element i being bit i.
type Subset uint32

// Len is the number of elements in s.
func (s Subset) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s Subset) Contains(i int) bool {
	return s&(1<<uint(i)) != 0
}

// BitSet is a labelled universe of at most MaxElements elements.
type BitSet struct {
	names []string
	index map[string]int
}

func NewBitSet(names ...string) (*BitSet, error) {
	if len(names) > MaxElements {
		return nil, fmt.Errorf("%d elements, at most %d allowed: %w", len(names), MaxElements, ErrTooManyElements)
	}
	b := &BitSet{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, ok := b.index[name]; ok {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateElement)
		}
		b.index[name] = i
	}
	return b, nil
}

func (b *BitSet) Length() int {
	return len(b.names)
}

// Full is the subset holding every element.
func (b *BitSet) Full() Subset {
	return Subset(1)<<uint(len(b.names)) - 1
}

// Subsets is the number of distinct subsets of the universe.
func (b *BitSet) Subsets() int {
	return 1 << uint(len(b.names))
}

// Of returns the subset holding the given elements.
func (b *BitSet) Of(members ...int) Subset {
	var s Subset
	for _, m := range members {
		if m < 0 || m >= len(b.names) {
			panic(fmt.Sprintf("lattice: element %d outside universe of %d", m, len(b.names)))
		}
		s |= 1 << uint(m)
	}
	return s
}

// Complement returns the elements of the universe missing from s.
func (b *BitSet) Complement(s Subset) Subset {
	return b.Full() &^ s
}

func (b *BitSet) Name(i int) string {
	return b.names[i]
}

// Index returns the element with the given label.
func (b *BitSet) Index(name string) (int, bool) {
	i, ok := b.index[name]
	return i, ok
}

// Members yields the elements of s in increasing order.
func (b *BitSet) Members(s Subset) iter.Seq[int] {
	return func(yield func(int) bool) {
		for rest := uint32(s & b.Full()); rest != 0; rest &= rest - 1 {
			if !yield(bits.TrailingZeros32(rest)) {
				return
			}
		}
	}
}

func (b *BitSet) String(s Subset) string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range b.Members(s) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(b.names[i])
	}
	sb.WriteByte('}')
	return sb.String()
}
