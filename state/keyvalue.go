package state

import (
	"sync"

	"golang.org/x/xerrors"
)

// ErrNotFound is returned by Get when the key was never written.
var ErrNotFound = xerrors.New("key not found")

// Store is the persistent key/value layer a contract reads its state from at
// the start of a call and writes back at the end. Put must be atomic: after
// it returns, Get sees either the old or the new value, never a mix.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// MemStore keeps values in memory. It is meant for tests and for running a
// contract without a host database.
type MemStore struct {
	sync.Mutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	s.Lock()
	defer s.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, v...), nil
}

func (s *MemStore) Put(key string, value []byte) error {
	if key == "" {
		return xerrors.New("empty key")
	}
	s.Lock()
	defer s.Unlock()
	s.data[key] = append([]byte{}, value...)
	return nil
}
