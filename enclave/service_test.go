package enclave

import (
	"testing"

	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/core"
	"github.com/dedis/ballot/poll"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/cothority/v3"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

var testNonce uint64

func call(t *testing.T, s *Service, kp *key.Pair, op contracts.Op) (*contracts.Response, error) {
	testNonce++
	req, err := NewRequest(kp, s.Scope(), testNonce, op)
	require.NoError(t, err)
	reply, err := s.Call(req)
	require.NoError(t, err)
	return reply.Result()
}

func TestService_Call(t *testing.T) {
	local := onet.NewLocalTest(cothority.Suite)
	hosts, _, _ := local.GenTree(1, true)
	defer local.CloseAll()
	s := local.GetServices(hosts, enclaveID)[0].(*Service)

	owner := auth.NewKeyPair()
	voter := auth.NewKeyPair()

	_, err := call(t, s, nil, &contracts.GetTotal{})
	require.True(t, xerrors.Is(err, core.ErrPollNotCreated), "%v", err)

	_, err = call(t, s, owner, &contracts.Create{Description: "Pick a color", MaxVotes: 1})
	require.NoError(t, err)
	for _, text := range []string{"Red", "Blue"} {
		_, err = call(t, s, owner, &contracts.AddOption{Text: text})
		require.NoError(t, err)
	}
	_, err = call(t, s, voter, &contracts.OpenPoll{})
	require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%v", err)
	_, err = call(t, s, owner, &contracts.OpenPoll{})
	require.NoError(t, err)

	resp, err := call(t, s, voter, &contracts.JoinPoll{})
	require.NoError(t, err)
	require.True(t, resp.Joined)
	_, err = call(t, s, voter, &contracts.Vote{Selector: poll.ByText("Red")})
	require.NoError(t, err)
	_, err = call(t, s, voter, &contracts.Vote{Selector: poll.ByText("Blue")})
	require.True(t, xerrors.Is(err, core.ErrVoteLimitExceeded), "%v", err)

	resp, err = call(t, s, nil, &contracts.GetTotal{})
	require.NoError(t, err)
	require.Equal(t, uint64(1), resp.Total)
}

func TestService_BadRequests(t *testing.T) {
	local := onet.NewLocalTest(cothority.Suite)
	hosts, _, _ := local.GenTree(1, true)
	defer local.CloseAll()
	s := local.GetServices(hosts, enclaveID)[0].(*Service)

	owner := auth.NewKeyPair()
	req, err := NewRequest(owner, s.Scope(), 1, &contracts.Create{Description: "x", MaxVotes: 1})
	require.NoError(t, err)

	// A signature over other arguments does not identify the caller.
	forged := *req
	forged.Args = append([]byte{}, req.Args...)
	forged.Args[len(forged.Args)-1] ^= 1
	reply, err := s.Call(&forged)
	require.NoError(t, err)
	require.Equal(t, int(core.KindUnauthorized), reply.ErrKind)

	reply, err = s.Call(&CallRequest{Method: "drop_table"})
	require.NoError(t, err)
	require.Equal(t, int(core.KindInvalidArgument), reply.ErrKind)
	require.Contains(t, reply.ErrMsg, "drop_table")

	reply, err = s.Call(req)
	require.NoError(t, err)
	_, err = reply.Result()
	require.NoError(t, err)
}

func TestService_Replay(t *testing.T) {
	local := onet.NewLocalTest(cothority.Suite)
	hosts, _, _ := local.GenTree(1, true)
	defer local.CloseAll()
	s := local.GetServices(hosts, enclaveID)[0].(*Service)

	owner := auth.NewKeyPair()
	voter := auth.NewKeyPair()
	_, err := call(t, s, owner, &contracts.Create{Description: "Replay", MaxVotes: 1})
	require.NoError(t, err)
	_, err = call(t, s, owner, &contracts.AddOption{Text: "Yes"})
	require.NoError(t, err)
	_, err = call(t, s, owner, &contracts.OpenPoll{})
	require.NoError(t, err)

	testNonce++
	closeReq, err := NewRequest(owner, s.Scope(), testNonce, &contracts.ClosePoll{})
	require.NoError(t, err)
	reply, err := s.Call(closeReq)
	require.NoError(t, err)
	_, err = reply.Result()
	require.NoError(t, err)

	_, err = call(t, s, owner, &contracts.OpenPoll{})
	require.NoError(t, err)

	// Sending the captured close_poll again must not close the poll.
	reply, err = s.Call(closeReq)
	require.NoError(t, err)
	_, err = reply.Result()
	require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%v", err)
	p, err := s.contract.Poll()
	require.NoError(t, err)
	require.True(t, p.IsOpen())

	// A properly signed call with a stale nonce is refused as well.
	staleReq, err := NewRequest(owner, s.Scope(), 1, &contracts.ClosePoll{})
	require.NoError(t, err)
	reply, err = s.Call(staleReq)
	require.NoError(t, err)
	require.Equal(t, int(core.KindUnauthorized), reply.ErrKind)

	// A call signed for another deployment does not identify the owner.
	testNonce++
	otherReq, err := NewRequest(owner, "elsewhere/"+core.DefaultStateKey, testNonce,
		&contracts.FinalizePoll{})
	require.NoError(t, err)
	reply, err = s.Call(otherReq)
	require.NoError(t, err)
	require.Equal(t, int(core.KindUnauthorized), reply.ErrKind)

	// Nonces are tracked per caller, and a rejected call still spends its
	// nonce.
	_, err = call(t, s, voter, &contracts.Vote{Selector: poll.ByText("Yes")})
	require.True(t, xerrors.Is(err, core.ErrNotAMember), "%v", err)
	testNonce++
	joinReq, err := NewRequest(voter, s.Scope(), testNonce, &contracts.JoinPoll{})
	require.NoError(t, err)
	reply, err = s.Call(joinReq)
	require.NoError(t, err)
	resp, err := reply.Result()
	require.NoError(t, err)
	require.True(t, resp.Joined)
	reply, err = s.Call(joinReq)
	require.NoError(t, err)
	require.Equal(t, int(core.KindUnauthorized), reply.ErrKind)

	// Anonymous queries carry no nonce and can be repeated.
	for i := 0; i < 2; i++ {
		resp, err = call(t, s, nil, &contracts.GetTotal{})
		require.NoError(t, err)
		require.Equal(t, uint64(0), resp.Total)
	}
}

func TestClient(t *testing.T) {
	local := onet.NewTCPTest(cothority.Suite)
	_, roster, _ := local.GenTree(1, true)
	defer local.CloseAll()

	owner := NewClient(roster, "", auth.NewKeyPair())
	defer owner.Close()
	voterA := NewClient(roster, "", auth.NewKeyPair())
	defer voterA.Close()
	voterB := NewClient(roster, "", auth.NewKeyPair())
	defer voterB.Close()
	anon := NewClient(roster, "", nil)
	defer anon.Close()

	require.NoError(t, owner.Create("Lunch", 2))
	require.NoError(t, owner.AddOption("Pizza"))
	require.NoError(t, owner.AddOption("Sushi"))
	require.NoError(t, owner.InsertOption("Tacos", 0))
	require.NoError(t, owner.RemoveOption(poll.ByText("Sushi")))
	require.NoError(t, owner.OpenPoll())

	for _, cl := range []*Client{voterA, voterB} {
		joined, err := cl.JoinPoll()
		require.NoError(t, err)
		require.True(t, joined)
	}
	joined, err := voterA.JoinPoll()
	require.NoError(t, err)
	require.False(t, joined)

	require.NoError(t, voterA.Vote(poll.ByText("Pizza")))
	require.NoError(t, voterA.Vote(poll.AtIndex(0)))
	require.NoError(t, voterB.Vote(poll.ByText("Pizza")))

	err = anon.Vote(poll.ByText("Pizza"))
	require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%v", err)
	err = voterB.ClosePoll()
	require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%v", err)

	require.NoError(t, owner.ClosePoll())
	require.NoError(t, owner.FinalizePoll())
	err = voterB.Vote(poll.ByText("Tacos"))
	require.True(t, xerrors.Is(err, core.ErrPollFinalized), "%v", err)

	total, err := anon.GetTotal()
	require.NoError(t, err)
	require.Equal(t, uint64(3), total)
	results, err := anon.GetResults()
	require.NoError(t, err)
	require.Equal(t, []poll.Tally{{Text: "Tacos", Votes: 1}, {Text: "Pizza", Votes: 2}}, results)
}
