package bolt

import (
	"encoding/binary"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")

	keyOwner   = []byte("owner")
	keyUpdated = []byte("updated")
)

// boltStore implements anchors.Store using bbolt. Entries are stored under
// their 32-byte name key as a flag byte followed by the record bytes.
type boltStore struct {
	db    *bbolt.DB
	clock clock.Clock
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string, clk clock.Clock) (anchors.Store, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db, clock: clk}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Get(key domain.NameKey) (domain.Entry, bool, error) {
	var (
		e     domain.Entry
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketEntries).Get(key[:])
		if v == nil {
			return nil
		}
		found = true
		// v is only valid inside the transaction; UnmarshalBinary copies.
		return e.UnmarshalBinary(v)
	})
	if err != nil {
		return domain.Entry{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	return e, found, nil
}

// Put writes the entry and the updated timestamp in one transaction.
func (s *boltStore) Put(key domain.NameKey, e domain.Entry) error {
	val, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEntries).Put(key[:], val); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

func (s *boltStore) Owner() (domain.Address, bool, error) {
	var (
		owner domain.Address
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyOwner)
		if v == nil {
			return nil
		}
		if len(v) != domain.AddressSize {
			return fmt.Errorf("stored owner has %d bytes", len(v))
		}
		copy(owner[:], v)
		found = true
		return nil
	})
	return owner, found, err
}

func (s *boltStore) PutOwner(owner domain.Address) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Put(keyOwner, owner[:]); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// Visit walks entries in key order. If visit returns false, iteration stops.
// Undecodable values abort the walk with an error.
func (s *boltStore) Visit(visit func(key domain.NameKey, e domain.Entry) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEntries).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			key, err := domain.NameKeyFromBytes(k)
			if err != nil {
				return err
			}
			var e domain.Entry
			if err := e.UnmarshalBinary(v); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			if !visit(key, e) {
				return nil
			}
		}
		return nil
	})
}

func (s *boltStore) Stats() anchors.StoreStats {
	st := anchors.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		_ = tx.Bucket(bucketEntries).ForEach(func(_, v []byte) error {
			st.Entries++
			if len(v) > 1 {
				st.Records++
			}
			if len(v) > 0 && v[0]&1 == 1 {
				st.Locked++
			}
			return nil
		})
		if v := tx.Bucket(bucketMeta).Get(keyUpdated); len(v) == 8 {
			st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return st
}

func (s *boltStore) touch(tx *bbolt.Tx) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(s.clock.Now().Unix()))
	return tx.Bucket(bucketMeta).Put(keyUpdated, buf)
}

var _ anchors.Store = (*boltStore)(nil)
