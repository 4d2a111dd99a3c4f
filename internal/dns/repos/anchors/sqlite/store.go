// Package sqlite stores registry entries in a SQLite database using the pure
// Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
)

//go:embed schema.sql
var schemaSQL string

const (
	metaOwner   = "owner"
	metaUpdated = "updated"
)

// sqliteStore implements anchors.Store. Writes are serialized by mu and each
// runs in its own transaction.
type sqliteStore struct {
	conn  *sql.DB
	mu    sync.RWMutex
	clock clock.Clock
}

// New opens or creates a SQLite database at path and applies the schema.
func New(path string, clk clock.Clock) (anchors.Store, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &sqliteStore{conn: conn, clock: clk}, nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

func (s *sqliteStore) Get(key domain.NameKey) (domain.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rdata  []byte
		locked bool
	)
	err := s.conn.QueryRow("SELECT rdata, locked FROM entries WHERE key = ?", key[:]).Scan(&rdata, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, false, nil
	}
	if err != nil {
		return domain.Entry{}, false, fmt.Errorf("failed to get entry %s: %w", key, err)
	}
	e := domain.Entry{Locked: locked}
	if len(rdata) > 0 {
		e.RData = rdata
	}
	return e, true, nil
}

func (s *sqliteStore) Put(key domain.NameKey, e domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	var rdata any
	if e.HasRecord() {
		rdata = e.RData
	}
	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO entries (key, rdata, locked, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET rdata = excluded.rdata, locked = excluded.locked, updated_at = excluded.updated_at
		`, key[:], rdata, e.Locked, now)
		if err != nil {
			return fmt.Errorf("failed to put entry %s: %w", key, err)
		}
		return putMeta(tx, metaUpdated, unixBytes(now))
	})
}

func (s *sqliteStore) Owner() (domain.Address, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v []byte
	err := s.conn.QueryRow("SELECT v FROM meta WHERE k = ?", metaOwner).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Address{}, false, nil
	}
	if err != nil {
		return domain.Address{}, false, fmt.Errorf("failed to get owner: %w", err)
	}
	if len(v) != domain.AddressSize {
		return domain.Address{}, false, fmt.Errorf("stored owner has %d bytes", len(v))
	}
	var owner domain.Address
	copy(owner[:], v)
	return owner, true, nil
}

func (s *sqliteStore) PutOwner(owner domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	return s.inTx(func(tx *sql.Tx) error {
		if err := putMeta(tx, metaOwner, owner[:]); err != nil {
			return err
		}
		return putMeta(tx, metaUpdated, unixBytes(now))
	})
}

// Visit walks entries in key order. Rows are read fully before visit runs so
// the callback never holds a database cursor.
func (s *sqliteStore) Visit(visit func(key domain.NameKey, e domain.Entry) bool) error {
	s.mu.RLock()
	rows, err := s.conn.Query("SELECT key, rdata, locked FROM entries ORDER BY key")
	if err != nil {
		s.mu.RUnlock()
		return fmt.Errorf("failed to query entries: %w", err)
	}

	type row struct {
		key domain.NameKey
		e   domain.Entry
	}
	var all []row
	for rows.Next() {
		var (
			k      []byte
			rdata  []byte
			locked bool
		)
		if err := rows.Scan(&k, &rdata, &locked); err != nil {
			rows.Close()
			s.mu.RUnlock()
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		key, err := domain.NameKeyFromBytes(k)
		if err != nil {
			rows.Close()
			s.mu.RUnlock()
			return err
		}
		e := domain.Entry{Locked: locked}
		if len(rdata) > 0 {
			e.RData = rdata
		}
		all = append(all, row{key: key, e: e})
	}
	err = rows.Err()
	rows.Close()
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to iterate entries: %w", err)
	}

	for _, r := range all {
		if !visit(r.key, r.e) {
			return nil
		}
	}
	return nil
}

func (s *sqliteStore) Stats() anchors.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := anchors.StoreStats{}
	_ = s.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN rdata IS NOT NULL AND length(rdata) > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(locked), 0)
		FROM entries
	`).Scan(&st.Entries, &st.Records, &st.Locked)

	var v []byte
	if err := s.conn.QueryRow("SELECT v FROM meta WHERE k = ?", metaUpdated).Scan(&v); err == nil && len(v) == 8 {
		st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
	}
	return st
}

func (s *sqliteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func putMeta(tx *sql.Tx, k string, v []byte) error {
	_, err := tx.Exec(`
		INSERT INTO meta (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v
	`, k, v)
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", k, err)
	}
	return nil
}

func unixBytes(ts int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(ts))
	return buf
}

var _ anchors.Store = (*sqliteStore)(nil)
