package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when no record has the key.
var ErrNotFound = errors.New("record not found")

// Get decodes the record stored under key.
func Get[T any](s *Store, key string) (T, error) {
	var v T
	var payload, sum []byte
	err := s.db.QueryRow(`SELECT payload, checksum FROM records WHERE key = ?`, key).Scan(&payload, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("query record %q: %w", key, err)
	}
	if err := decode(payload, sum, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Load returns the record under key, or def if it is absent or
// unreadable. Corrupt records are logged and deleted.
func Load[T any](s *Store, key string, def T) T {
	v, err := Get[T](s, key)
	switch {
	case err == nil:
		return v
	case errors.Is(err, ErrNotFound):
		return def
	case errors.Is(err, ErrCorrupt):
		s.logger.Warn("discarding corrupt record", "key", key, "error", err)
		if err := s.Delete(key); err != nil {
			s.logger.Error("delete corrupt record", "key", key, "error", err)
		}
		return def
	default:
		s.logger.Error("load record", "key", key, "error", err)
		return def
	}
}

// Save encodes v and upserts it under key.
func Save[T any](s *Store, key string, v T) error {
	payload, sum, err := encode(v)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`
		INSERT INTO records (key, checksum, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET checksum = excluded.checksum,
			payload = excluded.payload, updated_at = excluded.updated_at`,
		key, sum, payload, now,
	)
	if err != nil {
		return fmt.Errorf("save record %q: %w", key, err)
	}
	return nil
}

// Delete removes the record under key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete record %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored record keys in order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM records ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan record key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
