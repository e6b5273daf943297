package state

import (
	"time"

	"go.dedis.ch/onet/v3/log"
	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// BoltStore keeps values in a single bucket of a bbolt database. Each Put is
// its own transaction.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
	owned  bool
}

// NewBoltStore uses bucket inside an already opened database, creating the
// bucket if needed. The caller keeps ownership of db.
func NewBoltStore(db *bbolt.DB, bucket []byte) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, xerrors.Errorf("creating bucket %s: %v", bucket, err)
	}
	return &BoltStore{db: db, bucket: bucket}, nil
}

// OpenBoltStore opens (or creates) the database file at path. Close releases
// the file.
func OpenBoltStore(path string, bucket string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, xerrors.Errorf("opening %s: %v", path, err)
	}
	s, err := NewBoltStore(db, []byte(bucket))
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			log.Error("closing db:", cerr)
		}
		return nil, err
	}
	s.owned = true
	return s, nil
}

func (s *BoltStore) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return xerrors.Errorf("missing bucket %s", s.bucket)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		val = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *BoltStore) Put(key string, value []byte) error {
	if key == "" {
		return xerrors.New("empty key")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return xerrors.Errorf("missing bucket %s", s.bucket)
		}
		return b.Put([]byte(key), value)
	})
}

// Close closes the database if it was opened by OpenBoltStore.
func (s *BoltStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
