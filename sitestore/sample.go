package sitestore

import (
	"github.com/carbocation/pedcall"
	"github.com/carbocation/pfx"
)

// Sample is one row of the "Sample" table. Ordinal is the sample's position
// within every site's likelihood block.
type Sample struct {
	Ordinal  int         `db:"ordinal"`
	SampleID string      `db:"sample_id"`
	Sex      pedcall.Sex `db:"sex"`
	Diseased bool        `db:"diseased"`
}

// InsertSample adds a sample. Ordinals must be assigned densely from zero in
// the order likelihoods are written.
func (s *Store) InsertSample(sample Sample) error {
	_, err := s.DB.NamedExec("INSERT INTO Sample (ordinal, sample_id, sex, diseased) VALUES (:ordinal, :sample_id, :sex, :diseased)", sample)
	if err != nil {
		return pfx.Err(err)
	}
	return nil
}

// ReadSamples returns every sample in ordinal order.
func ReadSamples(s *Store) ([]Sample, error) {
	var samples []Sample
	if err := s.DB.Select(&samples, "SELECT ordinal, sample_id, sex, diseased FROM Sample ORDER BY ordinal ASC"); err != nil {
		return nil, pfx.Err(err)
	}
	return samples, nil
}
