package enclave

import (
	"sync/atomic"
	"time"

	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/poll"
	"go.dedis.ch/cothority/v3"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/network"
	"golang.org/x/xerrors"
)

// Scope names the contract deployment kept under stateKey by the server si.
// Signed calls carry it so that they cannot be played against another
// deployment.
func Scope(si *network.ServerIdentity, stateKey string) string {
	if stateKey == "" {
		stateKey = core.DefaultStateKey
	}
	return si.Public.String() + "/" + stateKey
}

// Client sends contract calls to the first server of the roster. Calls are
// signed with kp; a nil kp makes anonymous calls.
type Client struct {
	// nonce goes first to stay 64-bit aligned for atomic use.
	nonce uint64
	*onet.Client
	roster *onet.Roster
	kp     *key.Pair
	scope  string
}

// NewClient returns a client for the contract kept under stateKey, or
// core.DefaultStateKey if it is empty. Nonces start from the current time,
// so a new client with the same key keeps going above the old one's.
func NewClient(r *onet.Roster, stateKey string, kp *key.Pair) *Client {
	return &Client{
		Client: onet.NewClient(cothority.Suite, ServiceName),
		roster: r,
		kp:     kp,
		scope:  Scope(r.List[0], stateKey),
		nonce:  uint64(time.Now().UnixNano()),
	}
}

// NewRequest encodes op and signs it with kp, if any, for the deployment
// scope with the given nonce.
func NewRequest(kp *key.Pair, scope string, nonce uint64, op contracts.Op) (*CallRequest, error) {
	m, args, err := contracts.EncodeOp(op)
	if err != nil {
		return nil, err
	}
	req := &CallRequest{Method: string(m), Args: args}
	if kp != nil {
		req.Nonce = nonce
		req.Public, req.Signature, err = auth.Sign(kp, auth.Call{
			Scope:  scope,
			Method: req.Method,
			Nonce:  nonce,
			Args:   args,
		})
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// Call sends op and returns the contract's response. Rejections come back as
// *core.Error values.
func (c *Client) Call(op contracts.Op) (*contracts.Response, error) {
	req, err := NewRequest(c.kp, c.scope, atomic.AddUint64(&c.nonce, 1), op)
	if err != nil {
		return nil, err
	}
	reply := &CallReply{}
	err = c.SendProtobuf(c.roster.List[0], req, reply)
	if err != nil {
		return nil, xerrors.Errorf("send %s message: %v", req.Method, err)
	}
	return reply.Result()
}

func (c *Client) Create(description string, maxVotes int) error {
	_, err := c.Call(&contracts.Create{Description: description, MaxVotes: maxVotes})
	return err
}

func (c *Client) AddOption(text string) error {
	_, err := c.Call(&contracts.AddOption{Text: text})
	return err
}

func (c *Client) InsertOption(text string, index int) error {
	_, err := c.Call(&contracts.AddOption{Text: text, Index: index, AtIndex: true})
	return err
}

func (c *Client) RemoveOption(sel poll.Selector) error {
	_, err := c.Call(&contracts.RemoveOption{Selector: sel})
	return err
}

func (c *Client) OpenPoll() error {
	_, err := c.Call(&contracts.OpenPoll{})
	return err
}

func (c *Client) ClosePoll() error {
	_, err := c.Call(&contracts.ClosePoll{})
	return err
}

func (c *Client) FinalizePoll() error {
	_, err := c.Call(&contracts.FinalizePoll{})
	return err
}

// JoinPoll reports whether the caller was newly registered.
func (c *Client) JoinPoll() (bool, error) {
	resp, err := c.Call(&contracts.JoinPoll{})
	if err != nil {
		return false, err
	}
	return resp.Joined, nil
}

func (c *Client) Vote(sel poll.Selector) error {
	_, err := c.Call(&contracts.Vote{Selector: sel})
	return err
}

func (c *Client) GetTotal() (uint64, error) {
	resp, err := c.Call(&contracts.GetTotal{})
	if err != nil {
		return 0, err
	}
	return resp.Total, nil
}

func (c *Client) GetResults() ([]poll.Tally, error) {
	resp, err := c.Call(&contracts.GetResults{})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}
