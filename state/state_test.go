package state

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func testStore(t *testing.T, s Store) {
	_, err := s.Get("state")
	require.True(t, xerrors.Is(err, ErrNotFound))

	require.NoError(t, s.Put("state", []byte("one")))
	v, err := s.Get("state")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), v)

	// Returned slices must not alias stored data.
	v[0] = 'X'
	v, err = s.Get("state")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), v)

	require.NoError(t, s.Put("state", []byte("two")))
	v, err = s.Get("state")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), v)

	require.Error(t, s.Put("", []byte("x")))
}

func TestMemStore(t *testing.T) {
	testStore(t, NewMemStore())
}

func TestBoltStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "ballot-state")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "state.db")

	s, err := OpenBoltStore(path, "ballot")
	require.NoError(t, err)
	testStore(t, s)
	require.NoError(t, s.Close())

	// Values survive reopening the file.
	s, err = OpenBoltStore(path, "ballot")
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get("state")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), v)
}

func TestSealedStore(t *testing.T) {
	key := make([]byte, 32)
	key[0] = 1
	inner := NewMemStore()
	s, err := NewSealedStore(inner, key)
	require.NoError(t, err)
	testStore(t, s)

	raw, err := inner.Get("state")
	require.NoError(t, err)
	require.NotContains(t, string(raw), "two")

	// Tampering is detected.
	raw[len(raw)-1] ^= 1
	require.NoError(t, inner.Put("state", raw))
	_, err = s.Get("state")
	require.True(t, xerrors.Is(err, ErrSealBroken))

	// A blob copied under another key does not open.
	require.NoError(t, s.Put("state", []byte("three")))
	raw, err = inner.Get("state")
	require.NoError(t, err)
	require.NoError(t, inner.Put("other", raw))
	_, err = s.Get("other")
	require.True(t, xerrors.Is(err, ErrSealBroken))

	// So does one read with a different key.
	other := make([]byte, 32)
	wrong, err := NewSealedStore(inner, other)
	require.NoError(t, err)
	_, err = wrong.Get("state")
	require.True(t, xerrors.Is(err, ErrSealBroken))

	_, err = NewSealedStore(inner, []byte("short"))
	require.Error(t, err)
}
