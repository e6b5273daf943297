package enclave

import (
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/state"
	"go.dedis.ch/protobuf"
	"golang.org/x/xerrors"
)

// nonceGuard remembers the highest nonce accepted from each caller. It is
// stored next to the contract state, under the state key followed by
// "/nonce/" and the caller's party.
type nonceGuard struct {
	store  state.Store
	prefix string
}

type nonceRecord struct {
	Last uint64
}

func newNonceGuard(store state.Store, stateKey string) *nonceGuard {
	if stateKey == "" {
		stateKey = core.DefaultStateKey
	}
	return &nonceGuard{store: store, prefix: stateKey + "/nonce/"}
}

func (g *nonceGuard) last(caller core.Party) (uint64, error) {
	buf, err := g.store.Get(g.prefix + string(caller))
	if err != nil {
		if xerrors.Is(err, state.ErrNotFound) {
			return 0, nil
		}
		if xerrors.Is(err, state.ErrSealBroken) {
			return 0, core.Errorf(core.KindStateCorrupt, "nonce of %s: %v", caller.Short(), err)
		}
		return 0, xerrors.Errorf("reading nonce: %v", err)
	}
	rec := &nonceRecord{}
	if err := protobuf.Decode(buf, rec); err != nil {
		return 0, core.Errorf(core.KindStateCorrupt, "nonce of %s: %v", caller.Short(), err)
	}
	return rec.Last, nil
}

// admit accepts nonce for caller if it is above every nonce caller used
// before, and records it. Anonymous calls carry no signature to replay and
// are always admitted.
func (g *nonceGuard) admit(caller core.Party, nonce uint64) error {
	if caller.IsAnonymous() {
		return nil
	}
	last, err := g.last(caller)
	if err != nil {
		return err
	}
	if nonce <= last {
		return core.Errorf(core.KindUnauthorized, "nonce %d of %s is not above %d",
			nonce, caller.Short(), last)
	}
	buf, err := protobuf.Encode(&nonceRecord{Last: nonce})
	if err != nil {
		return xerrors.Errorf("encoding nonce: %v", err)
	}
	if err := g.store.Put(g.prefix+string(caller), buf); err != nil {
		return xerrors.Errorf("writing nonce: %v", err)
	}
	return nil
}
