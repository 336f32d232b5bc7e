// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownWebsite = errors.New("website domain does not exist")
	ErrNoSource       = errors.New("no source exists for this manga and domain")
	ErrWebsiteExists  = errors.New("website already exists")
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// currentChapterSubquery selects the latest recorded chapter marker for the
// manga id expression substituted into %s.
const currentChapterSubquery = `(SELECT c.number FROM chapter c WHERE c.manga_id = %s ORDER BY c.updated_at DESC, c.id DESC LIMIT 1)`

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
