// Package auth derives caller identities from signed requests and checks
// them against the roles a contract method requires.
package auth

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/dedis/ballot/core"
	"go.dedis.ch/cothority/v3"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Role is the permission level a method requires from its caller.
type Role int

const (
	// RoleNone admits everyone, including anonymous callers.
	RoleNone Role = iota
	// RoleIdentified admits any caller with a verified identity.
	RoleIdentified
	// RoleVoter admits identified callers other than the poll creator.
	RoleVoter
	// RoleCreator admits only the poll creator.
	RoleCreator
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleIdentified:
		return "identified"
	case RoleVoter:
		return "voter"
	case RoleCreator:
		return "creator"
	}
	return "invalid"
}

// Check returns an Unauthorized error unless caller holds role. creator is
// the poll creator, or Anonymous when no poll exists yet.
func Check(role Role, caller core.Party, creator core.Party) error {
	switch role {
	case RoleNone:
		return nil
	case RoleIdentified:
		if caller.IsAnonymous() {
			return core.Errorf(core.KindUnauthorized, "caller must be identified")
		}
		return nil
	case RoleVoter:
		if caller.IsAnonymous() {
			return core.Errorf(core.KindUnauthorized, "caller must be identified")
		}
		if caller == creator {
			return core.Errorf(core.KindUnauthorized, "the creator cannot vote")
		}
		return nil
	case RoleCreator:
		if caller.IsAnonymous() || caller != creator {
			return core.Errorf(core.KindUnauthorized,
				"only the creator may do this, caller is %s", caller.Short())
		}
		return nil
	}
	return core.Errorf(core.KindUnauthorized, "unknown role %d", int(role))
}

// PartyOf derives the party identity of a public key.
func PartyOf(pub kyber.Point) (core.Party, error) {
	buf, err := pub.MarshalBinary()
	if err != nil {
		return core.Anonymous, xerrors.Errorf("marshaling public key: %v", err)
	}
	return core.Party(hex.EncodeToString(buf)), nil
}

// Call is what a caller signs. Scope names the contract deployment the call
// is meant for and Nonce must grow with every call of the same caller, so a
// signed call is good for a single execution on a single deployment.
type Call struct {
	Scope  string
	Method string
	Nonce  uint64
	Args   []byte
}

// Digest is the message signed for c. Variable-length parts are
// length-prefixed so that no two calls share a digest.
func (c Call) Digest() []byte {
	h := sha256.New()
	b := make([]byte, 8)
	for _, part := range [][]byte{[]byte(c.Scope), []byte(c.Method), c.Args} {
		binary.LittleEndian.PutUint64(b, uint64(len(part)))
		h.Write(b)
		h.Write(part)
	}
	binary.LittleEndian.PutUint64(b, c.Nonce)
	h.Write(b)
	return h.Sum(nil)
}

// Sign produces the credentials for c: the marshaled public key and a
// Schnorr signature over c.Digest().
func Sign(kp *key.Pair, c Call) ([]byte, []byte, error) {
	pub, err := kp.Public.MarshalBinary()
	if err != nil {
		return nil, nil, xerrors.Errorf("marshaling public key: %v", err)
	}
	sig, err := schnorr.Sign(cothority.Suite, kp.Private, c.Digest())
	if err != nil {
		return nil, nil, xerrors.Errorf("signing call: %v", err)
	}
	return pub, sig, nil
}

// Identify verifies the credentials of c and returns the caller's party. A
// call without credentials is anonymous; a call with a key but a bad
// signature is rejected. Whether the nonce was used before is up to the
// host to check.
func Identify(public []byte, sig []byte, c Call) (core.Party, error) {
	if len(public) == 0 && len(sig) == 0 {
		return core.Anonymous, nil
	}
	pub := cothority.Suite.Point()
	if err := pub.UnmarshalBinary(public); err != nil {
		return core.Anonymous, core.Errorf(core.KindUnauthorized, "bad public key: %v", err)
	}
	if err := schnorr.Verify(cothority.Suite, pub, c.Digest(), sig); err != nil {
		log.Lvlf2("rejecting %s call: %v", c.Method, err)
		return core.Anonymous, core.Errorf(core.KindUnauthorized, "bad signature")
	}
	return PartyOf(pub)
}

// NewKeyPair returns a fresh key pair on the suite used for call signatures.
func NewKeyPair() *key.Pair {
	return key.NewKeyPair(cothority.Suite)
}
