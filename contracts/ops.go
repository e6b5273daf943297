package contracts

import (
	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/poll"
	"go.dedis.ch/protobuf"
)

// Method names an RPC of the ballot contract.
type Method string

const (
	MethodCreate       Method = "create"
	MethodAddOption    Method = "add_option"
	MethodRemoveOption Method = "remove_option"
	MethodOpenPoll     Method = "open_poll"
	MethodClosePoll    Method = "close_poll"
	MethodFinalizePoll Method = "finalize_poll"
	MethodJoinPoll     Method = "join_poll"
	MethodVote         Method = "vote"
	MethodGetTotal     Method = "get_total"
	MethodGetResults   Method = "get_results"
)

// Methods lists every method in the order they are documented.
var Methods = []Method{MethodCreate, MethodAddOption, MethodRemoveOption,
	MethodOpenPoll, MethodClosePoll, MethodFinalizePoll, MethodJoinPoll,
	MethodVote, MethodGetTotal, MethodGetResults}

// Role is the permission the gate requires for the method.
func (m Method) Role() auth.Role {
	switch m {
	case MethodCreate:
		return auth.RoleIdentified
	case MethodAddOption, MethodRemoveOption, MethodOpenPoll,
		MethodClosePoll, MethodFinalizePoll:
		return auth.RoleCreator
	case MethodJoinPoll, MethodVote:
		return auth.RoleVoter
	}
	return auth.RoleNone
}

// Op is one request to the contract. The set of ops is closed: only the
// types in this file implement it.
type Op interface {
	Method() Method
	sealed()
}

// Create instantiates the poll. The caller becomes its creator.
type Create struct {
	Description string
	MaxVotes    int
}

// AddOption appends Text, or inserts it at Index when AtIndex is set.
type AddOption struct {
	Text    string
	Index   int
	AtIndex bool
}

type RemoveOption struct {
	Selector poll.Selector
}

type OpenPoll struct{}

type ClosePoll struct{}

// FinalizePoll closes the poll for good.
type FinalizePoll struct{}

type JoinPoll struct{}

type Vote struct {
	Selector poll.Selector
}

type GetTotal struct{}

type GetResults struct{}

func (*Create) Method() Method       { return MethodCreate }
func (*AddOption) Method() Method    { return MethodAddOption }
func (*RemoveOption) Method() Method { return MethodRemoveOption }
func (*OpenPoll) Method() Method     { return MethodOpenPoll }
func (*ClosePoll) Method() Method    { return MethodClosePoll }
func (*FinalizePoll) Method() Method { return MethodFinalizePoll }
func (*JoinPoll) Method() Method     { return MethodJoinPoll }
func (*Vote) Method() Method         { return MethodVote }
func (*GetTotal) Method() Method     { return MethodGetTotal }
func (*GetResults) Method() Method   { return MethodGetResults }

func (*Create) sealed()       {}
func (*AddOption) sealed()    {}
func (*RemoveOption) sealed() {}
func (*OpenPoll) sealed()     {}
func (*ClosePoll) sealed()    {}
func (*FinalizePoll) sealed() {}
func (*JoinPoll) sealed()     {}
func (*Vote) sealed()         {}
func (*GetTotal) sealed()     {}
func (*GetResults) sealed()   {}

// NewOp returns an empty op for method.
func NewOp(m Method) (Op, error) {
	switch m {
	case MethodCreate:
		return &Create{}, nil
	case MethodAddOption:
		return &AddOption{}, nil
	case MethodRemoveOption:
		return &RemoveOption{}, nil
	case MethodOpenPoll:
		return &OpenPoll{}, nil
	case MethodClosePoll:
		return &ClosePoll{}, nil
	case MethodFinalizePoll:
		return &FinalizePoll{}, nil
	case MethodJoinPoll:
		return &JoinPoll{}, nil
	case MethodVote:
		return &Vote{}, nil
	case MethodGetTotal:
		return &GetTotal{}, nil
	case MethodGetResults:
		return &GetResults{}, nil
	}
	return nil, core.Errorf(core.KindInvalidArgument, "unknown method %q", string(m))
}

// EncodeOp returns the method and protobuf-encoded arguments of op, the
// form in which ops travel to the enclave and get signed.
func EncodeOp(op Op) (Method, []byte, error) {
	if op == nil {
		return "", nil, core.Errorf(core.KindInvalidArgument, "nil op")
	}
	buf, err := protobuf.Encode(op)
	if err != nil {
		return "", nil, core.Errorf(core.KindInvalidArgument, "encoding %s: %v", op.Method(), err)
	}
	return op.Method(), buf, nil
}

// DecodeOp is the inverse of EncodeOp.
func DecodeOp(m Method, args []byte) (Op, error) {
	op, err := NewOp(m)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return op, nil
	}
	if err := protobuf.Decode(args, op); err != nil {
		return nil, core.Errorf(core.KindInvalidArgument, "decoding %s: %v", m, err)
	}
	return op, nil
}
