// Package enclave hosts the ballot contract as an onet service. The service
// plays the role of the contract-hosting runtime: it authenticates callers,
// admits one call at a time and keeps the contract state in the server's
// database.
package enclave

import (
	"strings"
	"sync"

	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/config"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/state"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/network"
	"golang.org/x/xerrors"
)

const ServiceName = "BallotEnclave"

var enclaveID onet.ServiceID

var (
	cfgLock sync.Mutex
	cfg     = config.Default().Enclave
)

func init() {
	var err error
	enclaveID, err = onet.RegisterNewService(ServiceName, newService)
	log.ErrFatal(err)
	network.RegisterMessages(&CallRequest{}, &CallReply{})
}

// SetConfig sets the configuration used by services created afterwards. It
// must be called before the server starts.
func SetConfig(c config.Enclave) {
	cfgLock.Lock()
	defer cfgLock.Unlock()
	cfg = c
}

func currentConfig() config.Enclave {
	cfgLock.Lock()
	defer cfgLock.Unlock()
	return cfg
}

type Service struct {
	*onet.ServiceProcessor
	// callLock admits a single call at a time; the contract relies on it.
	callLock sync.Mutex
	contract *contracts.Contract
	nonces   *nonceGuard
	scope    string
}

// Scope is the deployment name signed calls to this service must carry.
func (s *Service) Scope() string {
	return s.scope
}

// Call authenticates the caller, decodes the op and dispatches it. Rejected
// calls are answered with the error kind in the reply; only failures outside
// the contract (store I/O) are returned as errors.
func (s *Service) Call(req *CallRequest) (*CallReply, error) {
	s.callLock.Lock()
	defer s.callLock.Unlock()

	caller, err := auth.Identify(req.Public, req.Signature, auth.Call{
		Scope:  s.scope,
		Method: req.Method,
		Nonce:  req.Nonce,
		Args:   req.Args,
	})
	if err != nil {
		return rejected(err)
	}
	// The nonce is spent even if the contract rejects the call.
	if err := s.nonces.admit(caller, req.Nonce); err != nil {
		if core.KindOf(err) == core.KindUnknown {
			log.Errorf("Nonce check of %s failed: %v", req.Method, err)
			return nil, xerrors.Errorf("calling %s: %v", req.Method, err)
		}
		return rejected(err)
	}
	op, err := contracts.DecodeOp(contracts.Method(req.Method), req.Args)
	if err != nil {
		return rejected(err)
	}
	resp, err := s.contract.Dispatch(caller, op)
	if err != nil {
		kind := core.KindOf(err)
		if kind == core.KindUnknown {
			log.Errorf("Call %s failed: %v", req.Method, err)
			return nil, xerrors.Errorf("calling %s: %v", req.Method, err)
		}
		if kind.Fatal() {
			log.Errorf("Contract state is unusable: %v", err)
		}
		return rejected(err)
	}
	return &CallReply{Joined: resp.Joined, Total: resp.Total, Results: resp.Results}, nil
}

func rejected(err error) (*CallReply, error) {
	kind := core.KindOf(err)
	msg := err.Error()
	// The kind travels separately, so strip its name from the message.
	msg = strings.TrimPrefix(msg, kind.String()+": ")
	if msg == kind.String() {
		msg = ""
	}
	return &CallReply{ErrKind: int(kind), ErrMsg: msg}, nil
}

func newStore(db state.Store, c config.Enclave) (state.Store, error) {
	key, err := c.SealKeyBytes()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return db, nil
	}
	return state.NewSealedStore(db, key)
}

func newService(c *onet.Context) (onet.Service, error) {
	s := &Service{
		ServiceProcessor: onet.NewServiceProcessor(c),
	}
	ec := currentConfig()
	db, bucket := s.GetAdditionalBucket([]byte(ec.Bucket))
	bs, err := state.NewBoltStore(db, bucket)
	if err != nil {
		return nil, err
	}
	store, err := newStore(bs, ec)
	if err != nil {
		return nil, xerrors.Errorf("creating state store: %v", err)
	}
	s.contract = contracts.NewContract(store, ec.StateKey)
	s.nonces = newNonceGuard(store, ec.StateKey)
	s.scope = Scope(s.ServerIdentity(), ec.StateKey)
	if err := s.RegisterHandlers(s.Call); err != nil {
		return nil, xerrors.New("couldn't register messages")
	}
	return s, nil
}
