package pipeline

import (
	"fmt"
	"sync"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/sitestore"
)

// Pedigree is the configured family on one chromosome, with the store
// ordinal of each member in pedcall member order.
type Pedigree struct {
	*pedcall.Family
	Chromosome string
	Ordinals   []int
}

// BuildFamily assigns the configured samples their family roles and their
// ploidy on chromosome.
func BuildFamily(cfg *Config, samples []sitestore.Sample, chromosome string) (*Pedigree, error) {
	byID := make(map[string]sitestore.Sample, len(samples))
	for _, s := range samples {
		byID[s.SampleID] = s
	}

	ped := &Pedigree{
		Family:     &pedcall.Family{},
		Chromosome: chromosome,
	}
	member := func(id string) (pedcall.Member, error) {
		s, ok := byID[id]
		if !ok {
			return pedcall.Member{}, fmt.Errorf("sample %s is not in the store: %w", id, ErrInvalidConfig)
		}
		ped.Ordinals = append(ped.Ordinals, s.Ordinal)
		return pedcall.Member{
			ID:       s.SampleID,
			Ploidy:   pedcall.PloidyOn(chromosome, s.Sex),
			Diseased: s.Diseased,
		}, nil
	}

	var err error
	if ped.Father, err = member(cfg.Family.Father); err != nil {
		return nil, err
	}
	if ped.Mother, err = member(cfg.Family.Mother); err != nil {
		return nil, err
	}
	for _, id := range cfg.Family.Children {
		child, err := member(id)
		if err != nil {
			return nil, err
		}
		ped.Children = append(ped.Children, child)
	}

	if cfg.Disease {
		err = ped.ValidateDisease()
	} else {
		err = ped.Validate()
	}
	if err != nil {
		return nil, err
	}
	return ped, nil
}

// pedigrees caches one Pedigree per chromosome for concurrent workers.
type pedigrees struct {
	cfg     *Config
	samples []sitestore.Sample

	mu    sync.Mutex
	cache map[string]*Pedigree
}

func (p *pedigrees) get(chromosome string) (*Pedigree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ped, ok := p.cache[chromosome]; ok {
		return ped, nil
	}
	ped, err := BuildFamily(p.cfg, p.samples, chromosome)
	if err != nil {
		return nil, err
	}
	if p.cache == nil {
		p.cache = make(map[string]*Pedigree)
	}
	p.cache[chromosome] = ped
	return ped, nil
}
