package state

import (
	"crypto/cipher"
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/xerrors"
)

// ErrSealBroken is returned when a stored value fails authentication, either
// because it was modified outside the contract or because the wrong key is
// configured.
var ErrSealBroken = xerrors.New("sealed value failed authentication")

// SealedStore encrypts values before handing them to the inner store. The
// key name is bound as additional data, so a blob moved to another key does
// not open.
type SealedStore struct {
	inner Store
	aead  cipher.AEAD
}

// NewSealedStore wraps inner with a ChaCha20-Poly1305 key of 32 bytes.
func NewSealedStore(inner Store, key []byte) (*SealedStore, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, xerrors.Errorf("creating cipher: %v", err)
	}
	return &SealedStore{inner: inner, aead: aead}, nil
}

func (s *SealedStore) Get(key string) ([]byte, error) {
	buf, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	ns := s.aead.NonceSize()
	if len(buf) < ns {
		return nil, ErrSealBroken
	}
	plain, err := s.aead.Open(nil, buf[:ns], buf[ns:], []byte(key))
	if err != nil {
		return nil, ErrSealBroken
	}
	return plain, nil
}

func (s *SealedStore) Put(key string, value []byte) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return xerrors.Errorf("reading nonce: %v", err)
	}
	return s.inner.Put(key, s.aead.Seal(nonce, nonce, value, []byte(key)))
}
