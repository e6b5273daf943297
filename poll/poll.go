package poll

import "github.com/dedis/ballot/core"

// New returns a poll in the Created stage with no options and no members.
func New(creator core.Party, description string, maxVotes int) (*Poll, error) {
	if creator.IsAnonymous() {
		return nil, core.Errorf(core.KindInvalidArgument, "anonymous creator")
	}
	if description == "" {
		return nil, core.Errorf(core.KindInvalidArgument, "empty description")
	}
	if maxVotes <= 0 {
		return nil, core.Errorf(core.KindInvalidArgument,
			"max votes must be positive, got %d", maxVotes)
	}
	return &Poll{
		Description: description,
		Creator:     string(creator),
		Stage:       Created,
		MaxVotes:    maxVotes,
	}, nil
}

// IsOpen reports whether the poll accepts joins and votes.
func (p *Poll) IsOpen() bool {
	return p.Stage == Open
}

// CreatedBy reports whether party created the poll.
func (p *Poll) CreatedBy(party core.Party) bool {
	return !party.IsAnonymous() && p.Creator == string(party)
}

// AddOption appends an option to the end of the ballot.
func (p *Poll) AddOption(text string) error {
	return p.InsertOption(text, len(p.Options))
}

// InsertOption inserts an option at index, shifting later options right.
// index may equal the number of options, which appends.
func (p *Poll) InsertOption(text string, index int) error {
	if p.Stage == Finalized {
		return core.ErrPollFinalized
	}
	if text == "" {
		return core.Errorf(core.KindInvalidArgument, "empty option text")
	}
	if index < 0 || index > len(p.Options) {
		return core.Errorf(core.KindIndexOutOfRange,
			"index %d not in [0, %d]", index, len(p.Options))
	}
	if p.indexOf(text) >= 0 {
		return core.Errorf(core.KindDuplicateOption, "option %q exists", text)
	}
	p.Options = append(p.Options, Option{})
	copy(p.Options[index+1:], p.Options[index:])
	p.Options[index] = Option{Text: text}
	return nil
}

// RemoveOption removes the selected option and returns it. Options that
// already received votes cannot be removed.
func (p *Poll) RemoveOption(sel Selector) (Option, error) {
	if p.Stage == Finalized {
		return Option{}, core.ErrPollFinalized
	}
	i, err := p.Find(sel)
	if err != nil {
		return Option{}, err
	}
	opt := p.Options[i]
	if opt.Votes() > 0 {
		return Option{}, core.Errorf(core.KindOptionHasVotes,
			"option %q has %d votes", opt.Text, opt.Votes())
	}
	p.Options = append(p.Options[:i], p.Options[i+1:]...)
	return opt, nil
}

// Find returns the position of the selected option. Text selectors match the
// lowest index.
func (p *Poll) Find(sel Selector) (int, error) {
	if sel.ByIndex {
		if sel.Index < 0 || sel.Index >= len(p.Options) {
			return -1, core.Errorf(core.KindOptionNotFound, "no option %s", sel)
		}
		return sel.Index, nil
	}
	i := p.indexOf(sel.Text)
	if i < 0 {
		return -1, core.Errorf(core.KindOptionNotFound, "no option %s", sel)
	}
	return i, nil
}

// OpenPoll starts accepting joins and votes. Opening an open poll is a no-op.
func (p *Poll) OpenPoll() error {
	if p.Stage == Finalized {
		return core.ErrPollFinalized
	}
	p.Stage = Open
	return nil
}

// ClosePoll stops accepting joins and votes. Closing a poll that is not open
// leaves its stage unchanged, so a never-opened poll stays Created.
func (p *Poll) ClosePoll() error {
	if p.Stage == Finalized {
		return core.ErrPollFinalized
	}
	if p.Stage == Open {
		p.Stage = Closed
	}
	return nil
}

// Finalize closes the poll permanently.
func (p *Poll) Finalize() error {
	if p.Stage == Finalized {
		return core.ErrPollFinalized
	}
	p.Stage = Finalized
	return nil
}

// Join registers party as a member. It returns false without changing
// anything if party already joined.
func (p *Poll) Join(party core.Party) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if party.IsAnonymous() {
		return false, core.Errorf(core.KindInvalidArgument, "anonymous party")
	}
	if p.IsMember(party) {
		return false, nil
	}
	p.Members = append(p.Members, string(party))
	return true, nil
}

// Vote records a vote of party for the selected option.
func (p *Poll) Vote(party core.Party, sel Selector) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if !p.IsMember(party) {
		return core.Errorf(core.KindNotAMember, "party %s did not join", party.Short())
	}
	i, err := p.Find(sel)
	if err != nil {
		return err
	}
	if cast := p.VotesCast(party); cast >= p.MaxVotes {
		return core.Errorf(core.KindVoteLimitExceeded,
			"party %s already cast %d of %d votes", party.Short(), cast, p.MaxVotes)
	}
	opt := &p.Options[i]
	if opt.hasVoter(party) {
		return core.Errorf(core.KindAlreadyVoted,
			"party %s already voted for %q", party.Short(), opt.Text)
	}
	opt.Voters = append(opt.Voters, string(party))
	return nil
}

// IsMember reports whether party joined the poll.
func (p *Poll) IsMember(party core.Party) bool {
	for _, m := range p.Members {
		if m == string(party) {
			return true
		}
	}
	return false
}

// VotesCast counts the options party voted for.
func (p *Poll) VotesCast(party core.Party) int {
	n := 0
	for i := range p.Options {
		if p.Options[i].hasVoter(party) {
			n++
		}
	}
	return n
}

// Total is the number of votes cast over all options.
func (p *Poll) Total() uint64 {
	var total uint64
	for i := range p.Options {
		total += p.Options[i].Votes()
	}
	return total
}

// Results lists the options in ballot order with their vote counts.
func (p *Poll) Results() []Tally {
	res := make([]Tally, len(p.Options))
	for i := range p.Options {
		res[i] = Tally{Text: p.Options[i].Text, Votes: p.Options[i].Votes()}
	}
	return res
}

func (p *Poll) checkOpen() error {
	switch p.Stage {
	case Open:
		return nil
	case Finalized:
		return core.ErrPollFinalized
	}
	return core.Errorf(core.KindPollClosed, "poll is %s", p.Stage)
}

func (p *Poll) indexOf(text string) int {
	for i := range p.Options {
		if p.Options[i].Text == text {
			return i
		}
	}
	return -1
}
