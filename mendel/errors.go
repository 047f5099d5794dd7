package mendel

import "errors"

// ErrUnsupportedPloidy is returned when no transmission table exists for a
// (father, mother, child) ploidy combination.
var ErrUnsupportedPloidy = errors.New("mendel: unsupported ploidy combination")
