package database

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: document collections and storage buckets
	{
		`CREATE TABLE documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			database_id TEXT NOT NULL,
			collection_id TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(database_id, collection_id, id)
		)`,
		`CREATE INDEX idx_documents_collection ON documents(database_id, collection_id, seq)`,

		`CREATE TABLE files (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			bucket_id TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			content BLOB NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(bucket_id, id)
		)`,
		`CREATE INDEX idx_files_bucket ON files(bucket_id, seq)`,
	},

	// Migration 2: accounts created through sign-up
	{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_users_email ON users(lower(email))`,
	},
}

// LatestVersion is the schema version after every migration is applied.
func LatestVersion() int { return len(migrations) }
