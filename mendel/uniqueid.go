package mendel

// UniqueID folds values drawn from [0, length) onto dense ids 0, 1, 2, ... in
// the order they are first added. It lets tables be indexed by the pattern of
// alleles in a family rather than by the alleles themselves.
type UniqueID struct {
	ids  []int
	next int
}

func NewUniqueID(length int) *UniqueID {
	ids := make([]int, length)
	for i := range ids {
		ids[i] = -1
	}
	return &UniqueID{ids: ids}
}

// AddID returns the id of x, assigning the next free id if x is new.
func (u *UniqueID) AddID(x int) int {
	if u.ids[x] == -1 {
		u.ids[x] = u.next
		u.next++
	}
	return u.ids[x]
}

// ID returns the id assigned to x, or -1 if x has not been added.
func (u *UniqueID) ID(x int) int {
	return u.ids[x]
}

func (u *UniqueID) NumberIDsSoFar() int {
	return u.next
}
