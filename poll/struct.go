package poll

import (
	"strconv"

	"github.com/dedis/ballot/core"
)

// Stage is the lifecycle position of a poll.
type Stage int

const (
	// Created polls have never been opened.
	Created Stage = iota
	Open
	Closed
	// Finalized polls are closed for good; only queries are accepted.
	Finalized
)

func (s Stage) String() string {
	switch s {
	case Created:
		return "created"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Finalized:
		return "finalized"
	}
	return "invalid"
}

// Poll is the single ballot held by a contract instance. It is persisted as a
// whole under one store key, so every field must be protobuf-encodable.
type Poll struct {
	Description string
	Creator     string
	Stage       Stage
	MaxVotes    int
	Options     []Option
	// Members holds the parties that joined, in join order.
	Members []string
}

// Option is one choice on the ballot. Voters references members by
// identity; its length is the option's vote count.
type Option struct {
	Text   string
	Voters []string
}

// Tally is the public view of an option: its label and vote count, without
// the voters.
type Tally struct {
	Text  string
	Votes uint64
}

// Selector resolves an option either by its text or by its position.
type Selector struct {
	Text    string
	Index   int
	ByIndex bool
}

// ByText selects the first option whose text is equal to text.
func ByText(text string) Selector {
	return Selector{Text: text}
}

// AtIndex selects the option at position i.
func AtIndex(i int) Selector {
	return Selector{Index: i, ByIndex: true}
}

func (s Selector) String() string {
	if s.ByIndex {
		return "#" + strconv.Itoa(s.Index)
	}
	return "\"" + s.Text + "\""
}

// Votes returns the derived vote count of the option.
func (o *Option) Votes() uint64 {
	return uint64(len(o.Voters))
}

func (o *Option) hasVoter(party core.Party) bool {
	for _, v := range o.Voters {
		if v == string(party) {
			return true
		}
	}
	return false
}
