// Package sitestore keeps per-sample genotype likelihoods for many sites in a
// single SQLite file, together with the samples they belong to.
package sitestore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS Metadata (
	filename TEXT NOT NULL,
	index_creation_time INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS Sample (
	ordinal INTEGER PRIMARY KEY,
	sample_id TEXT NOT NULL UNIQUE,
	sex INTEGER NOT NULL DEFAULT 0,
	diseased INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS Site (
	site_id TEXT NOT NULL,
	chromosome TEXT NOT NULL,
	position INTEGER NOT NULL,
	number_of_alleles INTEGER NOT NULL,
	compression INTEGER NOT NULL,
	likelihoods BLOB NOT NULL,
	PRIMARY KEY (chromosome, position, site_id)
);
`

// Store is the main object used for reading and writing site stores.
type Store struct {
	FilePath string
	DB       *sqlx.DB
	Metadata *Metadata
}

// Metadata conforms to the single row of the "Metadata" table.
type Metadata struct {
	Filename          string
	IndexCreationTime Time `db:"index_creation_time"`
}

// Create makes a new, empty store at path. It refuses to overwrite an
// existing file.
func Create(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, pfx.Err(fmt.Errorf("%s already exists", path))
	}

	db, err := connect(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	s := &Store{
		FilePath: path,
		DB:       db,
		Metadata: &Metadata{
			Filename:          filepath.Base(path),
			IndexCreationTime: Time(time.Now().Truncate(time.Second)),
		},
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}
	if _, err := db.NamedExec("INSERT INTO Metadata (filename, index_creation_time) VALUES (:filename, :index_creation_time)", s.Metadata); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return s, nil
}

// Open attempts to read a store located at path. If successful, this returns
// a new Store object. Otherwise, it returns an error.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, pfx.Err(err)
	}

	db, err := connect(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	s := &Store{
		FilePath: path,
		DB:       db,
		Metadata: &Metadata{},
	}

	if err := db.Get(s.Metadata, "SELECT filename, index_creation_time FROM Metadata LIMIT 1"); err != nil {
		db.Close()
		return nil, pfx.Err(fmt.Errorf("%s has no metadata: %w", path, err))
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Count returns the number of sites in the store.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.DB.Get(&n, "SELECT COUNT(*) FROM Site"); err != nil {
		return 0, pfx.Err(err)
	}
	return n, nil
}

func WhichSQLiteDriver() string {
	return whichSQLiteDriver
}
