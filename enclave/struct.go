package enclave

import (
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/poll"
)

// CallRequest carries one contract call. Public and Signature are empty for
// anonymous calls; otherwise Signature is a Schnorr signature over the
// auth.Call made of the service scope, Method, Nonce and Args. Each signed
// call needs a Nonce above every nonce the caller used before.
type CallRequest struct {
	Method    string
	Args      []byte
	Nonce     uint64
	Public    []byte
	Signature []byte
}

// CallReply is the outcome of a call. A rejected call has a non-zero
// ErrKind and ErrMsg set; the other fields are then meaningless.
type CallReply struct {
	Joined  bool
	Total   uint64
	Results []poll.Tally
	ErrKind int
	ErrMsg  string
}

// Result turns the reply back into the contract's response or typed error.
func (r *CallReply) Result() (*contracts.Response, error) {
	if r.ErrKind != int(core.KindUnknown) {
		return nil, &core.Error{Kind: core.ErrorKind(r.ErrKind), Msg: r.ErrMsg}
	}
	return &contracts.Response{Joined: r.Joined, Total: r.Total, Results: r.Results}, nil
}
