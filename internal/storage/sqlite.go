package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmr/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the migration level of the database.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS identity (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			authenticated INTEGER NOT NULL DEFAULT 0,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			email TEXT NOT NULL,
			roles TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS folders (
			path TEXT PRIMARY KEY NOT NULL,
			folder_id TEXT NOT NULL,
			parent_path TEXT NOT NULL,
			display_name TEXT NOT NULL,
			favicon TEXT NOT NULL DEFAULT '',
			is_root INTEGER NOT NULL DEFAULT 0,
			fetched_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS items (
			folder_path TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			path TEXT NOT NULL,
			display_name TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL,
			type TEXT NOT NULL,
			created TEXT NOT NULL,
			modified TEXT,
			child_count INTEGER NOT NULL DEFAULT 0,
			favicon TEXT NOT NULL DEFAULT '',
			highlight INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (folder_path, position),
			FOREIGN KEY (folder_path) REFERENCES folders(path) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_items_id ON items(id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the visit counter and custom favicon of items.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE items ADD COLUMN access_count INTEGER NOT NULL DEFAULT 0;
		ALTER TABLE items ADD COLUMN custom_favicon TEXT NOT NULL DEFAULT '';
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// Load reads the cache from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Cache, error) {
	cache := model.NewCache()

	identity, err := s.loadIdentity()
	if err != nil {
		return nil, err
	}
	cache.Identity = identity

	rows, err := s.db.Query(`
		SELECT path, folder_id, parent_path, display_name, favicon, is_root, fetched_at
		FROM folders
		ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var f model.CachedFolder
		var isRoot int
		var fetchedAt string

		if err := rows.Scan(
			&f.Path, &f.Folder.ID, &f.Folder.Path, &f.Folder.DisplayName,
			&f.Folder.Favicon, &isRoot, &fetchedAt,
		); err != nil {
			return nil, err
		}
		f.Folder.IsRoot = isRoot == 1
		f.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
		f.Items = []model.Bookmark{}

		index[f.Path] = len(cache.Folders)
		cache.Folders = append(cache.Folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT folder_path, position, id, path, display_name, url, sort_order, type,
			created, modified, child_count, access_count, favicon, custom_favicon, highlight
		FROM items
		ORDER BY folder_path, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var folderPath string
		var b model.Bookmark
		var createdStr string
		var modifiedStr sql.NullString

		if err := rows.Scan(
			&folderPath, &b.Position, &b.ID, &b.Path, &b.DisplayName, &b.URL,
			&b.SortOrder, &b.Type, &createdStr, &modifiedStr, &b.ChildCount,
			&b.AccessCount, &b.Favicon, &b.CustomFavicon, &b.Highlight,
		); err != nil {
			return nil, err
		}

		b.Created, _ = time.Parse(time.RFC3339, createdStr)
		if modifiedStr.Valid {
			t, err := time.Parse(time.RFC3339, modifiedStr.String)
			if err == nil {
				b.Modified = &t
			}
		}

		i, ok := index[folderPath]
		if !ok {
			continue
		}
		cache.Folders[i].Items = append(cache.Folders[i].Items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cache, nil
}

func (s *SQLiteStorage) loadIdentity() (*model.Identity, error) {
	var id model.Identity
	var authenticated int
	var rolesJSON string

	err := s.db.QueryRow(`
		SELECT authenticated, user_id, user_name, display_name, email, roles
		FROM identity WHERE id = 1
	`).Scan(&authenticated, &id.UserID, &id.UserName, &id.DisplayName, &id.Email, &rolesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id.Authenticated = authenticated == 1
	if err := json.Unmarshal([]byte(rolesJSON), &id.Roles); err != nil {
		id.Roles = []string{}
	}
	return &id, nil
}

// Save writes the cache to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(cache *model.Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Clear existing data, items go with their folders
	for _, stmt := range []string{"DELETE FROM identity", "DELETE FROM folders"} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	if id := cache.Identity; id != nil {
		rolesJSON, _ := json.Marshal(id.Roles)
		if id.Roles == nil {
			rolesJSON = []byte("[]")
		}
		if _, err := tx.Exec(`
			INSERT INTO identity (id, authenticated, user_id, user_name, display_name, email, roles)
			VALUES (1, ?, ?, ?, ?, ?, ?)
		`, boolToInt(id.Authenticated), id.UserID, id.UserName, id.DisplayName, id.Email, string(rolesJSON)); err != nil {
			return err
		}
	}

	folderStmt, err := tx.Prepare(`
		INSERT INTO folders (path, folder_id, parent_path, display_name, favicon, is_root, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer folderStmt.Close()

	itemStmt, err := tx.Prepare(`
		INSERT INTO items (folder_path, position, id, path, display_name, url, sort_order, type,
			created, modified, child_count, access_count, favicon, custom_favicon, highlight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	for _, f := range cache.Folders {
		if _, err := folderStmt.Exec(
			f.Path, f.Folder.ID, f.Folder.Path, f.Folder.DisplayName, f.Folder.Favicon,
			boolToInt(f.Folder.IsRoot), f.FetchedAt.Format(time.RFC3339),
		); err != nil {
			return err
		}

		for i, b := range f.Items {
			var modified *string
			if b.Modified != nil {
				m := b.Modified.Format(time.RFC3339)
				modified = &m
			}
			if _, err := itemStmt.Exec(
				f.Path, i+1, b.ID, b.Path, b.DisplayName, b.URL, b.SortOrder, string(b.Type),
				b.Created.Format(time.RFC3339), modified, b.ChildCount, b.AccessCount,
				b.Favicon, b.CustomFavicon, b.Highlight,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bmr/cache.db
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}
