// Package cache implements the persistent module cache named in
// SPEC_FULL.md §3 as its own top-level package (pulled out of
// internal/registry, which still owns the in-memory resolution cache
// but no longer owns the disk-backed one): a content-addressed,
// sqlite-backed store of resolved module metadata, keyed by
// hash(source + dependency_hashes + compiler_version) per spec.md §4.5,
// so a process restart does not force every sl-source module to be
// re-parsed from scratch.
//
// Grounded on the teacher's in-memory-only internal/module cache;
// modernc.org/sqlite is the same pure-Go sqlite driver the rest of the
// pack reaches for when a component needs an embedded database.
package cache

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
)

// Record is the serializable subset of a resolved module's metadata
// persisted across process runs. internal/registry converts its own
// Metadata to and from a Record at the cache boundary so this package
// never needs to import internal/registry back.
type Record struct {
	Name                 string
	Kind                 string
	CapabilitiesRequired []string
	Description          string
	Version              string
	SourcePath           string
	Dependencies         []string
}

// Cache is a content-addressed, disk-backed cache of resolved module
// metadata.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite-backed cache at path. Pass
// ":memory:" for an ephemeral cache useful in tests.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening module cache database: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS module_cache (
	cache_key   TEXT PRIMARY KEY,
	module_name TEXT NOT NULL,
	artifact    BLOB NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing module cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashKey computes the cache key for one module: sha256 over its own
// source text, its dependencies' own cache keys (so a changed transitive
// dependency invalidates every ancestor's key), and the compiler version
// string, matching spec.md §4.5's "hash(source + dependency_hashes +
// compiler_version)".
func HashKey(source string, dependencyHashes []string, compilerVersion string) string {
	h := sha256.New()
	h.Write([]byte(source))
	for _, dh := range dependencyHashes {
		h.Write([]byte(dh))
	}
	h.Write([]byte(compilerVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up a previously persisted Record by cache key.
func (c *Cache) Get(key string) (*Record, bool, error) {
	var blob []byte
	err := c.db.QueryRow(`SELECT artifact FROM module_cache WHERE cache_key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying module cache: %w", err)
	}
	var rec Record
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&rec); err != nil {
		return nil, false, fmt.Errorf("decoding cached module metadata: %w", err)
	}
	return &rec, true, nil
}

// Put persists rec under key, replacing any prior entry.
func (c *Cache) Put(key string, rec *Record) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("encoding module metadata for cache: %w", err)
	}
	_, err := c.db.Exec(`INSERT INTO module_cache (cache_key, module_name, artifact) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET artifact = excluded.artifact`, key, rec.Name, buf.Bytes())
	if err != nil {
		return fmt.Errorf("writing module cache entry: %w", err)
	}
	return nil
}
