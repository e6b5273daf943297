// Package contracts implements the ballot contract: it resolves an op to its
// handler, loads the poll from the state store, runs the authorization gate,
// applies the op and writes the poll back only when the op succeeded and
// changed it.
package contracts

import (
	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/poll"
	"github.com/dedis/ballot/state"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Response is the reply to a successful call. Only the fields relevant to
// the method are set.
type Response struct {
	Joined  bool
	Total   uint64
	Results []poll.Tally
}

// Contract is one deployed ballot: the store it persists to and the key of
// its poll. It holds no poll between calls.
type Contract struct {
	store state.Store
	key   string
}

// NewContract binds a contract to its store. An empty key selects
// core.DefaultStateKey.
func NewContract(store state.Store, key string) *Contract {
	if key == "" {
		key = core.DefaultStateKey
	}
	return &Contract{store: store, key: key}
}

// Dispatch runs op on behalf of caller. A rejected call never writes to the
// store.
func (c *Contract) Dispatch(caller core.Party, op Op) (*Response, error) {
	if op == nil {
		return nil, core.Errorf(core.KindInvalidArgument, "nil op")
	}
	m := op.Method()
	if create, ok := op.(*Create); ok {
		return c.create(caller, create)
	}
	p, err := c.load()
	if err != nil {
		return nil, err
	}
	if err := auth.Check(m.Role(), caller, core.Party(p.Creator)); err != nil {
		log.Lvlf2("%s by %s rejected: %v", m, caller.Short(), err)
		return nil, err
	}
	resp, dirty, err := apply(p, caller, op)
	if err != nil {
		log.Lvlf3("%s by %s failed: %v", m, caller.Short(), err)
		return nil, err
	}
	if dirty {
		if err := c.save(p); err != nil {
			return nil, err
		}
	}
	log.Lvlf3("%s by %s done, stage %s, total %d", m, caller.Short(), p.Stage, p.Total())
	return resp, nil
}

// Poll returns a copy of the stored poll for inspection.
func (c *Contract) Poll() (*poll.Poll, error) {
	return c.load()
}

func (c *Contract) create(caller core.Party, op *Create) (*Response, error) {
	_, err := c.load()
	if err == nil {
		return nil, core.Errorf(core.KindPollExists, "poll already created")
	}
	if !xerrors.Is(err, core.ErrPollNotCreated) {
		return nil, err
	}
	if err := auth.Check(MethodCreate.Role(), caller, core.Anonymous); err != nil {
		return nil, err
	}
	p, err := poll.New(caller, op.Description, op.MaxVotes)
	if err != nil {
		return nil, err
	}
	if err := c.save(p); err != nil {
		return nil, err
	}
	log.Lvlf2("poll %q created by %s", p.Description, caller.Short())
	return &Response{}, nil
}

// apply runs op against p and reports whether p changed.
func apply(p *poll.Poll, caller core.Party, op Op) (*Response, bool, error) {
	switch op := op.(type) {
	case *AddOption:
		var err error
		if op.AtIndex {
			err = p.InsertOption(op.Text, op.Index)
		} else {
			err = p.AddOption(op.Text)
		}
		return &Response{}, err == nil, err
	case *RemoveOption:
		_, err := p.RemoveOption(op.Selector)
		return &Response{}, err == nil, err
	case *OpenPoll:
		if p.IsOpen() {
			return &Response{}, false, nil
		}
		err := p.OpenPoll()
		return &Response{}, err == nil, err
	case *ClosePoll:
		before := p.Stage
		err := p.ClosePoll()
		return &Response{}, err == nil && p.Stage != before, err
	case *FinalizePoll:
		err := p.Finalize()
		return &Response{}, err == nil, err
	case *JoinPoll:
		joined, err := p.Join(caller)
		return &Response{Joined: joined}, joined, err
	case *Vote:
		err := p.Vote(caller, op.Selector)
		return &Response{Total: p.Total()}, err == nil, err
	case *GetTotal:
		return &Response{Total: p.Total()}, false, nil
	case *GetResults:
		return &Response{Total: p.Total(), Results: p.Results()}, false, nil
	case *Create:
		return nil, false, core.Errorf(core.KindPollExists, "poll already created")
	}
	return nil, false, core.Errorf(core.KindInvalidArgument, "unsupported op %T", op)
}

func (c *Contract) load() (*poll.Poll, error) {
	buf, err := c.store.Get(c.key)
	if err != nil {
		if xerrors.Is(err, state.ErrNotFound) {
			return nil, core.ErrPollNotCreated
		}
		if xerrors.Is(err, state.ErrSealBroken) {
			log.Errorf("State under %q does not open: %v", c.key, err)
			return nil, core.Errorf(core.KindStateCorrupt, "%v", err)
		}
		return nil, xerrors.Errorf("reading state: %v", err)
	}
	p, err := poll.Decode(buf)
	if err != nil {
		log.Errorf("State under %q is corrupt: %v", c.key, err)
		return nil, err
	}
	return p, nil
}

func (c *Contract) save(p *poll.Poll) error {
	buf, err := poll.Encode(p)
	if err != nil {
		return err
	}
	if err := c.store.Put(c.key, buf); err != nil {
		return xerrors.Errorf("writing state: %v", err)
	}
	return nil
}
