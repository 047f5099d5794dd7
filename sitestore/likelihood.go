package sitestore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/carbocation/pedcall/mendel"
)

// SampleLikelihood represents the data for one specific individual at one
// specific site: whether the data is missing, the individual's ploidy there,
// and the natural-log likelihood of each genotype hypothesis.
type SampleLikelihood struct {
	Missing        bool
	Ploidy         mendel.Ploidy
	LogLikelihoods []float64
}

const flagMissing = 1

// A likelihood block is a little-endian uint32 sample count followed, per
// sample, by a flag byte, a ploidy byte, a uint16 hypothesis count and that
// many float64s.
func encodeLikelihoods(samples []*SampleLikelihood) ([]byte, error) {
	size := 4
	for _, s := range samples {
		size += 4 + 8*len(s.LogLikelihoods)
	}

	out := make([]byte, size)
	binary.LittleEndian.PutUint32(out, uint32(len(samples)))
	offset := 4
	for i, s := range samples {
		if len(s.LogLikelihoods) > math.MaxUint16 {
			return nil, fmt.Errorf("sample %d has %d hypotheses", i, len(s.LogLikelihoods))
		}
		var flags byte
		if s.Missing {
			flags |= flagMissing
		}
		out[offset] = flags
		out[offset+1] = byte(s.Ploidy)
		binary.LittleEndian.PutUint16(out[offset+2:], uint16(len(s.LogLikelihoods)))
		offset += 4
		for _, ll := range s.LogLikelihoods {
			binary.LittleEndian.PutUint64(out[offset:], math.Float64bits(ll))
			offset += 8
		}
	}
	return out, nil
}

func decodeLikelihoods(block []byte) ([]*SampleLikelihood, error) {
	if len(block) < 4 {
		return nil, fmt.Errorf("likelihood block is %d bytes; expected at least 4", len(block))
	}
	n := int(binary.LittleEndian.Uint32(block))
	offset := 4

	out := make([]*SampleLikelihood, 0, n)
	for i := 0; i < n; i++ {
		if offset+4 > len(block) {
			return nil, fmt.Errorf("likelihood block ends inside the header of sample %d", i)
		}
		s := &SampleLikelihood{
			Missing: block[offset]&flagMissing != 0,
			Ploidy:  mendel.Ploidy(block[offset+1]),
		}
		if s.Ploidy > mendel.Diploid {
			return nil, fmt.Errorf("sample %d has ploidy %d", i, block[offset+1])
		}
		count := int(binary.LittleEndian.Uint16(block[offset+2:]))
		offset += 4

		if offset+8*count > len(block) {
			return nil, fmt.Errorf("likelihood block ends inside the values of sample %d", i)
		}
		s.LogLikelihoods = make([]float64, count)
		for h := range s.LogLikelihoods {
			s.LogLikelihoods[h] = math.Float64frombits(binary.LittleEndian.Uint64(block[offset:]))
			offset += 8
		}
		out = append(out, s)
	}
	if offset != len(block) {
		return nil, fmt.Errorf("likelihood block has %d trailing bytes", len(block)-offset)
	}
	return out, nil
}
