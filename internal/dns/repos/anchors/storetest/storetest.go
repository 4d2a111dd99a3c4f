// Package storetest holds the behaviour every anchors.Store backend must share.
package storetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
)

// Factory opens a fresh, empty store that reads time from clk.
type Factory func(t *testing.T, clk clock.Clock) anchors.Store

// Key returns a deterministic test key whose first byte is b.
func Key(b byte) domain.NameKey {
	var k domain.NameKey
	k[0] = b
	k[31] = ^b
	return k
}

// Run exercises a Store implementation.
func Run(t *testing.T, open Factory) {
	t.Run("empty", func(t *testing.T) {
		s := open(t, clock.NewMockClock(time.Unix(100, 0)))
		_, ok, err := s.Get(Key(1))
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = s.Owner()
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, anchors.StoreStats{}, s.Stats())
	})

	t.Run("put and get states", func(t *testing.T) {
		clk := clock.NewMockClock(time.Unix(1_700_000_000, 0))
		s := open(t, clk)

		set := domain.Entry{RData: []byte{1, 'n', 0, 0, 16}}
		locked := domain.Entry{RData: []byte{9, 9}, Locked: true}
		burned := domain.Entry{Locked: true}
		cleared := domain.Entry{}

		for i, e := range []domain.Entry{set, locked, burned, cleared} {
			require.NoError(t, s.Put(Key(byte(i+1)), e))
		}

		for i, want := range []domain.Entry{set, locked, burned, cleared} {
			got, ok, err := s.Get(Key(byte(i + 1)))
			require.NoError(t, err)
			assert.True(t, ok, "key %d should be present", i+1)
			assert.Equal(t, want.Locked, got.Locked)
			assert.Equal(t, want.HasRecord(), got.HasRecord())
			if want.HasRecord() {
				assert.Equal(t, want.RData, got.RData)
			}
			assert.Equal(t, want.State(), got.State())
		}

		st := s.Stats()
		assert.Equal(t, uint64(4), st.Entries)
		assert.Equal(t, uint64(2), st.Records)
		assert.Equal(t, uint64(2), st.Locked)
		assert.Equal(t, int64(1_700_000_000), st.UpdatedUnix)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := open(t, clock.NewMockClock(time.Unix(100, 0)))
		require.NoError(t, s.Put(Key(7), domain.Entry{RData: []byte("first")}))
		require.NoError(t, s.Put(Key(7), domain.Entry{}))

		got, ok, err := s.Get(Key(7))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.StateUnset, got.State())
		assert.Equal(t, uint64(1), s.Stats().Entries)
	})

	t.Run("returned entries are copies", func(t *testing.T) {
		s := open(t, clock.NewMockClock(time.Unix(100, 0)))
		in := domain.Entry{RData: []byte("abc")}
		require.NoError(t, s.Put(Key(3), in))
		in.RData[0] = 'X'

		got, _, err := s.Get(Key(3))
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got.RData)
		got.RData[0] = 'Y'

		again, _, err := s.Get(Key(3))
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again.RData)
	})

	t.Run("owner", func(t *testing.T) {
		clk := clock.NewMockClock(time.Unix(500, 0))
		s := open(t, clk)
		a := domain.MustParseAddress("0x00000000000000000000000000000000000000aa")
		b := domain.MustParseAddress("0x00000000000000000000000000000000000000bb")

		require.NoError(t, s.PutOwner(a))
		got, ok, err := s.Owner()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, a, got)

		clk.Advance(time.Minute)
		require.NoError(t, s.PutOwner(b))
		got, _, err = s.Owner()
		require.NoError(t, err)
		assert.Equal(t, b, got)
		assert.Equal(t, int64(560), s.Stats().UpdatedUnix)
	})

	t.Run("visit", func(t *testing.T) {
		s := open(t, clock.NewMockClock(time.Unix(100, 0)))
		want := map[domain.NameKey]domain.Entry{
			Key(1): {RData: []byte("one")},
			Key(2): {Locked: true},
			Key(3): {RData: []byte("three"), Locked: true},
		}
		for k, e := range want {
			require.NoError(t, s.Put(k, e))
		}

		seen := map[domain.NameKey]domain.Entry{}
		require.NoError(t, s.Visit(func(k domain.NameKey, e domain.Entry) bool {
			seen[k] = e
			return true
		}))
		require.Len(t, seen, len(want))
		for k, e := range want {
			assert.Equal(t, e.State(), seen[k].State())
		}

		calls := 0
		require.NoError(t, s.Visit(func(domain.NameKey, domain.Entry) bool {
			calls++
			return false
		}))
		assert.Equal(t, 1, calls)
	})
}
