package sitestore

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// Site holds the likelihoods of every sample at one locus, in sample ordinal
// order.
type Site struct {
	ID          string
	Chromosome  string
	Position    uint32
	NAlleles    uint16
	Likelihoods []*SampleLikelihood
}

// siteRow conforms to the rows of the "Site" table and can be easily parsed
// with sqlx.
type siteRow struct {
	ID          string      `db:"site_id"`
	Chromosome  string      `db:"chromosome"`
	Position    uint32      `db:"position"`
	NAlleles    uint16      `db:"number_of_alleles"`
	Compression Compression `db:"compression"`
	Likelihoods []byte      `db:"likelihoods"`
}

// InsertSite writes site with its likelihood block compressed by c.
func (s *Store) InsertSite(site *Site, c Compression) error {
	block, err := encodeLikelihoods(site.Likelihoods)
	if err != nil {
		return pfx.Err(fmt.Errorf("site %s: %w", site.ID, err))
	}
	if block, err = c.compress(block); err != nil {
		return pfx.Err(err)
	}

	row := siteRow{
		ID:          site.ID,
		Chromosome:  site.Chromosome,
		Position:    site.Position,
		NAlleles:    site.NAlleles,
		Compression: c,
		Likelihoods: block,
	}
	_, err = s.DB.NamedExec(`INSERT INTO Site (site_id, chromosome, position, number_of_alleles, compression, likelihoods)
	VALUES (:site_id, :chromosome, :position, :number_of_alleles, :compression, :likelihoods)`, row)
	if err != nil {
		return pfx.Err(err)
	}
	return nil
}

// site decodes the row. buffer is scratch space for decompression and may be
// replaced by a larger one.
func (r *siteRow) site(buffer *[]byte) (*Site, error) {
	block, err := r.Compression.decompress(*buffer, r.Likelihoods)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", r.ID, err)
	}
	if r.Compression != CompressionDisabled {
		*buffer = block
	}

	likelihoods, err := decodeLikelihoods(block)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", r.ID, err)
	}

	return &Site{
		ID:          r.ID,
		Chromosome:  r.Chromosome,
		Position:    r.Position,
		NAlleles:    r.NAlleles,
		Likelihoods: likelihoods,
	}, nil
}
