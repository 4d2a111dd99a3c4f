package memory

import (
	"errors"
	"sync"

	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
)

var errClosed = errors.New("memory store is closed")

// memoryStore implements anchors.Store with maps. Contents are lost on Close.
type memoryStore struct {
	mu       sync.RWMutex
	entries  map[domain.NameKey]domain.Entry
	owner    *domain.Address
	updated  int64
	clock    clock.Clock
	isClosed bool
}

// New returns an empty in-memory store.
func New(clk clock.Clock) anchors.Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &memoryStore{entries: make(map[domain.NameKey]domain.Entry), clock: clk}
}

func (s *memoryStore) Get(key domain.NameKey) (domain.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isClosed {
		return domain.Entry{}, false, errClosed
	}
	e, ok := s.entries[key]
	return e.Clone(), ok, nil
}

func (s *memoryStore) Put(key domain.NameKey, e domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return errClosed
	}
	s.entries[key] = e.Clone()
	s.updated = s.clock.Now().Unix()
	return nil
}

func (s *memoryStore) Owner() (domain.Address, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isClosed {
		return domain.Address{}, false, errClosed
	}
	if s.owner == nil {
		return domain.Address{}, false, nil
	}
	return *s.owner, true, nil
}

func (s *memoryStore) PutOwner(owner domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return errClosed
	}
	s.owner = &owner
	s.updated = s.clock.Now().Unix()
	return nil
}

// Visit iterates over a snapshot so visit may call back into the store.
func (s *memoryStore) Visit(visit func(key domain.NameKey, e domain.Entry) bool) error {
	s.mu.RLock()
	if s.isClosed {
		s.mu.RUnlock()
		return errClosed
	}
	snapshot := make(map[domain.NameKey]domain.Entry, len(s.entries))
	for k, e := range s.entries {
		snapshot[k] = e.Clone()
	}
	s.mu.RUnlock()

	for k, e := range snapshot {
		if !visit(k, e) {
			return nil
		}
	}
	return nil
}

func (s *memoryStore) Stats() anchors.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := anchors.StoreStats{Entries: uint64(len(s.entries)), UpdatedUnix: s.updated}
	for _, e := range s.entries {
		if e.HasRecord() {
			st.Records++
		}
		if e.Locked {
			st.Locked++
		}
	}
	return st
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	s.isClosed = true
	s.entries = nil
	s.mu.Unlock()
	return nil
}

var _ anchors.Store = (*memoryStore)(nil)
