// Package sigstore implements the thought-signature store (spec §4.8, C9):
// a persistent key-value table keyed by the SHA-256 of an opaque
// thought_signature string, mapping it to the project it was issued under.
// Used by the Antigravity thinking path (spec §4.7 step 6, §4.9) to decide
// whether a signature carried in an inbound request was ever issued under
// the caller's current project.
//
// Grounded on the teacher's pkg/registry.Registry for the mutex-guarded
// map shape, generalized to a durable modernc.org/sqlite-backed table
// since, unlike the registry's in-memory provider map, signature records
// must survive a process restart (spec §6: "Signature store DB: small
// embedded SQL/KV").
package sigstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// TTL is the signature-record lifetime (spec §4.8: "TTL = 7 days").
	TTL = 7 * 24 * time.Hour

	// Capacity is the maximum number of live records; once exceeded the
	// least-recently-used record (by lastUsedAt) is evicted (spec §4.8).
	Capacity = 1000
)

// Record is one stored signature -> project binding.
type Record struct {
	ProjectID  string
	Provider   string
	Endpoint   string
	Account    int
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Store persists signature records to an embedded sqlite database.
type Store struct {
	db *sql.DB

	// now is overridable in tests.
	now func() time.Time
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists. path may be ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS signatures (
	hash         TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL,
	provider     TEXT NOT NULL,
	endpoint     TEXT NOT NULL,
	account      INTEGER NOT NULL,
	created_at   INTEGER NOT NULL,
	last_used_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS signatures_last_used_idx ON signatures(last_used_at);
`

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// hashSignature returns the hex-encoded SHA-256 of a thought_signature
// string, used as the table key so raw signatures (which may be large
// opaque blobs) are never stored verbatim.
func hashSignature(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}

// SaveSignature records that signature was issued under projectID via
// provider/endpoint/account. Evicts the least-recently-used record first
// if the table is at Capacity.
func (s *Store) SaveSignature(ctx context.Context, signature, projectID, provider, endpoint string, account int) error {
	now := s.now()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signatures`).Scan(&count); err != nil {
		return err
	}
	if count >= Capacity {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM signatures WHERE hash = (
				SELECT hash FROM signatures ORDER BY last_used_at ASC LIMIT 1
			)`); err != nil {
			return err
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signatures (hash, project_id, provider, endpoint, account, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			project_id = excluded.project_id,
			provider = excluded.provider,
			endpoint = excluded.endpoint,
			account = excluded.account,
			last_used_at = excluded.last_used_at
	`, hashSignature(signature), projectID, provider, endpoint, account, now.Unix(), now.Unix())
	return err
}

// ErrNotFound is returned by GetRecord when no live (non-expired) record
// exists for the signature.
var ErrNotFound = errors.New("sigstore: no record for signature")

// GetRecord returns the record for signature, touching its lastUsedAt.
// Expired records (older than TTL since creation) are treated as absent
// and lazily deleted.
func (s *Store) GetRecord(ctx context.Context, signature string) (Record, error) {
	hash := hashSignature(signature)

	var rec Record
	var createdUnix, lastUsedUnix int64
	row := s.db.QueryRowContext(ctx, `
		SELECT project_id, provider, endpoint, account, created_at, last_used_at
		FROM signatures WHERE hash = ?`, hash)
	if err := row.Scan(&rec.ProjectID, &rec.Provider, &rec.Endpoint, &rec.Account, &createdUnix, &lastUsedUnix); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.CreatedAt = time.Unix(createdUnix, 0)
	rec.LastUsedAt = time.Unix(lastUsedUnix, 0)

	if s.now().Sub(rec.CreatedAt) > TTL {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM signatures WHERE hash = ?`, hash)
		return Record{}, ErrNotFound
	}

	_, _ = s.db.ExecContext(ctx, `UPDATE signatures SET last_used_at = ? WHERE hash = ?`, s.now().Unix(), hash)
	return rec, nil
}

// IsValidForProject reports whether signature was ever issued under
// targetProjectID — the test the Antigravity thinking path uses to decide
// whether to keep or strip a carried signature (spec §4.8/§4.9).
func (s *Store) IsValidForProject(ctx context.Context, signature, targetProjectID string) bool {
	rec, err := s.GetRecord(ctx, signature)
	if err != nil {
		return false
	}
	return rec.ProjectID == targetProjectID
}
