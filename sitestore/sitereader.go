package sitestore

import (
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

// SiteReader iterates over the sites of a store ordered by chromosome,
// position and site ID.
type SiteReader struct {
	SitesSeen uint32
	rows      *sqlx.Rows
	err       error

	// Cached values
	buffer []byte
}

func (s *Store) NewSiteReader() *SiteReader {
	sr := &SiteReader{}
	rows, err := s.DB.Queryx("SELECT site_id, chromosome, position, number_of_alleles, compression, likelihoods FROM Site ORDER BY chromosome ASC, position ASC, site_id ASC")
	if err != nil {
		sr.err = pfx.Err(err)
		return sr
	}
	sr.rows = rows

	return sr
}

func (sr *SiteReader) Error() error {
	return sr.err
}

// Read returns the next site, or nil once the sites are exhausted or an error
// has occurred. Check Error after Read returns nil.
func (sr *SiteReader) Read() *Site {
	if sr.err != nil || sr.rows == nil {
		return nil
	}

	if !sr.rows.Next() {
		if err := sr.rows.Err(); err != nil {
			sr.err = pfx.Err(err)
		}
		sr.Close()
		return nil
	}

	var row siteRow
	if err := sr.rows.StructScan(&row); err != nil {
		sr.err = pfx.Err(err)
		sr.Close()
		return nil
	}

	site, err := row.site(&sr.buffer)
	if err != nil {
		sr.err = pfx.Err(err)
		sr.Close()
		return nil
	}

	sr.SitesSeen++
	return site
}

// Close releases the underlying rows. Read calls it when iteration ends, so
// it is only needed when abandoning a reader early.
func (sr *SiteReader) Close() error {
	if sr.rows == nil {
		return nil
	}
	err := sr.rows.Close()
	sr.rows = nil
	return err
}
