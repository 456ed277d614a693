package store

import "database/sql"

// Store holds the SQLite-backed stores used by the local backend.
type Store struct {
	DB        *sql.DB
	Documents *SQLiteDocumentStore
	Files     *SQLiteFileStore
	Users     *SQLiteUserStore
}

// New creates a Store with all sub-stores initialized. publicURL is the base
// under which file view URLs are generated.
func New(db *sql.DB, publicURL string) *Store {
	return &Store{
		DB:        db,
		Documents: NewSQLiteDocumentStore(db),
		Files:     NewSQLiteFileStore(db, publicURL),
		Users:     NewSQLiteUserStore(db),
	}
}
