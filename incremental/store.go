package incremental

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sitesmith/sitesmith/assets"
)

// schemaVersion guards the cache layout. A mismatch drops and recreates the
// tables: the cache is always disposable, never authoritative.
const schemaVersion = 1

// PageRecord is everything the cache remembers about one rendered page:
// its fingerprint, the dependency list the fingerprint was computed from,
// the output bytes, and the asset registrations needed to reconstruct the
// build-wide asset set when the page is skipped.
type PageRecord struct {
	FilePath    string
	URL         string
	Fingerprint string
	Deps        []Dep
	Output      []byte
	Assets      []assets.Record
}

// Store is the SQLite-backed fingerprint store. All errors from its methods
// are advisory: callers degrade to a full rebuild rather than failing the
// build.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the cache database at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS pages (
		file_path TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		deps TEXT NOT NULL,
		output BLOB NOT NULL,
		page_assets TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	version, err := s.metaValue("schema_version")
	if err != nil {
		return err
	}
	want := fmt.Sprintf("%d", schemaVersion)
	if version != "" && version != want {
		// Old layout: throw everything away and start over.
		if _, err := s.db.Exec(`DELETE FROM pages; DELETE FROM meta;`); err != nil {
			return err
		}
	}
	return s.setMetaValue("schema_version", want)
}

func (s *Store) metaValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) setMetaValue(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// StructuralStamp returns the stamp recorded by the previous build; empty
// when no build has completed yet.
func (s *Store) StructuralStamp() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metaValue("structural_stamp")
}

// SetStructuralStamp records the current build's structural stamp.
func (s *Store) SetStructuralStamp(stamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetaValue("structural_stamp", stamp)
}

// Lookup fetches the previous build's record for a file path.
func (s *Store) Lookup(filePath string) (*PageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec PageRecord
	var depsJSON, assetsJSON []byte
	err := s.db.QueryRow(
		`SELECT file_path, url, fingerprint, deps, output, page_assets FROM pages WHERE file_path = ?`,
		filePath,
	).Scan(&rec.FilePath, &rec.URL, &rec.Fingerprint, &depsJSON, &rec.Output, &assetsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query page record: %w", err)
	}

	if err := json.Unmarshal(depsJSON, &rec.Deps); err != nil {
		return nil, false, fmt.Errorf("decode deps for %s: %w", filePath, err)
	}
	if err := json.Unmarshal(assetsJSON, &rec.Assets); err != nil {
		return nil, false, fmt.Errorf("decode assets for %s: %w", filePath, err)
	}
	return &rec, true, nil
}

// Save upserts a page record after a successful render and write.
func (s *Store) Save(buildID string, rec *PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	depsJSON, err := json.Marshal(rec.Deps)
	if err != nil {
		return fmt.Errorf("encode deps: %w", err)
	}
	if rec.Assets == nil {
		rec.Assets = []assets.Record{}
	}
	assetsJSON, err := json.Marshal(rec.Assets)
	if err != nil {
		return fmt.Errorf("encode assets: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO pages (file_path, url, fingerprint, deps, output, page_assets, build_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
		   url = excluded.url,
		   fingerprint = excluded.fingerprint,
		   deps = excluded.deps,
		   output = excluded.output,
		   page_assets = excluded.page_assets,
		   build_id = excluded.build_id,
		   updated_at = excluded.updated_at`,
		rec.FilePath, rec.URL, rec.Fingerprint, depsJSON, rec.Output, assetsJSON,
		buildID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert page record: %w", err)
	}
	return nil
}

// Prune drops records for pages the current build no longer produces.
func (s *Store) Prune(validPaths map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT file_path FROM pages`)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			_ = rows.Close()
			return err
		}
		if _, ok := validPaths[fp]; !ok {
			stale = append(stale, fp)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, fp := range stale {
		if _, err := s.db.Exec(`DELETE FROM pages WHERE file_path = ?`, fp); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
