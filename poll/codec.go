package poll

import (
	"github.com/dedis/ballot/core"
	"go.dedis.ch/protobuf"
	"golang.org/x/xerrors"
)

// Encode serializes the poll for the state store.
func Encode(p *Poll) ([]byte, error) {
	buf, err := protobuf.Encode(p)
	if err != nil {
		return nil, core.Errorf(core.KindStateCorrupt, "encoding poll: %v", err)
	}
	return buf, nil
}

// Decode parses a stored poll and checks its invariants. Any failure is
// reported as StateCorrupt.
func Decode(buf []byte) (*Poll, error) {
	p := &Poll{}
	if err := protobuf.Decode(buf, p); err != nil {
		return nil, core.Errorf(core.KindStateCorrupt, "decoding poll: %v", err)
	}
	if err := p.validate(); err != nil {
		return nil, core.Errorf(core.KindStateCorrupt, "invalid poll: %v", err)
	}
	return p, nil
}

func (p *Poll) validate() error {
	if p.Description == "" {
		return xerrors.New("empty description")
	}
	if p.Creator == "" {
		return xerrors.New("missing creator")
	}
	if p.MaxVotes <= 0 {
		return xerrors.Errorf("max votes %d", p.MaxVotes)
	}
	if p.Stage < Created || p.Stage > Finalized {
		return xerrors.Errorf("stage %d", int(p.Stage))
	}
	members := make(map[string]bool, len(p.Members))
	for _, m := range p.Members {
		if m == "" || members[m] {
			return xerrors.Errorf("bad member %q", m)
		}
		members[m] = true
	}
	texts := make(map[string]bool, len(p.Options))
	cast := make(map[string]int)
	for _, o := range p.Options {
		if o.Text == "" || texts[o.Text] {
			return xerrors.Errorf("bad option %q", o.Text)
		}
		texts[o.Text] = true
		seen := make(map[string]bool, len(o.Voters))
		for _, v := range o.Voters {
			if !members[v] || seen[v] {
				return xerrors.Errorf("bad voter on option %q", o.Text)
			}
			seen[v] = true
			cast[v]++
		}
	}
	for _, n := range cast {
		if n > p.MaxVotes {
			return xerrors.Errorf("party exceeds %d votes", p.MaxVotes)
		}
	}
	return nil
}
