package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	_ "github.com/lib/pq" // postgres drivers
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Database provides methods to persist and reload a snapshot of the
// channel cache.
type Database interface {
	Adder
	Deleter
	Getter
	Updater
	sq.BaseRunner

	Migrate() error
	Close()
}

type database struct {
	*sql.DB
}

// New connects to the postgres database
// and returns that connection.
func New(psqlInfo string) (Database, error) {
	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, errors.Wrap(err, "Error opening database")
	}

	// make sure we have a good connection
	err = db.Ping()
	if err != nil {
		return nil, errors.Wrap(err, "Error pinging database")
	}

	return &database{db}, nil
}

// NewWithMigration connects to the database and creates any missing
// tables.
func NewWithMigration(psqlInfo string) (Database, error) {
	db, err := New(psqlInfo)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the snapshot tables if they don't exist yet.
func (d *database) Migrate() error {
	for _, stmt := range schema {
		if _, err := d.Exec(stmt); err != nil {
			return errors.Wrap(err, "Error migrating database")
		}
	}
	return nil
}

// Close closes the database.
func (d *database) Close() {
	d.DB.Close()
}
