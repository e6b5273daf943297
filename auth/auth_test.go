package auth

import (
	"testing"

	"github.com/dedis/ballot/core"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func TestCheck(t *testing.T) {
	creator := core.Party("creator")
	voter := core.Party("voter")
	tests := []struct {
		role   Role
		caller core.Party
		ok     bool
	}{
		{RoleNone, core.Anonymous, true},
		{RoleNone, voter, true},
		{RoleIdentified, core.Anonymous, false},
		{RoleIdentified, creator, true},
		{RoleVoter, core.Anonymous, false},
		{RoleVoter, creator, false},
		{RoleVoter, voter, true},
		{RoleCreator, core.Anonymous, false},
		{RoleCreator, voter, false},
		{RoleCreator, creator, true},
		{Role(42), creator, false},
	}
	for _, test := range tests {
		err := Check(test.role, test.caller, creator)
		if test.ok {
			require.NoError(t, err, "%s/%s", test.role, test.caller.Short())
		} else {
			require.True(t, xerrors.Is(err, core.ErrUnauthorized),
				"%s/%s", test.role, test.caller.Short())
		}
	}

	// Without a poll there is no creator; an anonymous caller must not pass
	// as one.
	require.Error(t, Check(RoleCreator, core.Anonymous, core.Anonymous))
}

func TestIdentify(t *testing.T) {
	kp := NewKeyPair()
	call := Call{Scope: "deployment/state", Method: "vote", Nonce: 7, Args: []byte("args")}
	pub, sig, err := Sign(kp, call)
	require.NoError(t, err)

	party, err := Identify(pub, sig, call)
	require.NoError(t, err)
	expected, err := PartyOf(kp.Public)
	require.NoError(t, err)
	require.Equal(t, expected, party)
	require.False(t, party.IsAnonymous())

	party, err = Identify(nil, nil, Call{Method: "get_total"})
	require.NoError(t, err)
	require.True(t, party.IsAnonymous())

	// The signature covers every part of the call.
	for _, changed := range []Call{
		{Scope: "deployment/state", Method: "join_poll", Nonce: 7, Args: []byte("args")},
		{Scope: "deployment/state", Method: "vote", Nonce: 7, Args: []byte("other")},
		{Scope: "deployment/state", Method: "vote", Nonce: 8, Args: []byte("args")},
		{Scope: "elsewhere/state", Method: "vote", Nonce: 7, Args: []byte("args")},
	} {
		_, err = Identify(pub, sig, changed)
		require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%+v: %v", changed, err)
	}

	// Signature from another key.
	other := NewKeyPair()
	otherPub, _, err := Sign(other, call)
	require.NoError(t, err)
	_, err = Identify(otherPub, sig, call)
	require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%v", err)

	_, err = Identify([]byte("garbage"), sig, call)
	require.True(t, xerrors.Is(err, core.ErrUnauthorized), "%v", err)
}

func TestCall_Digest(t *testing.T) {
	require.NotEqual(t, Call{Method: "ab", Args: []byte("c")}.Digest(),
		Call{Method: "a", Args: []byte("bc")}.Digest())
	require.NotEqual(t, Call{Scope: "a", Method: "b"}.Digest(),
		Call{Scope: "ab"}.Digest())
	require.NotEqual(t, Call{Method: "vote", Nonce: 1}.Digest(),
		Call{Method: "vote", Nonce: 2}.Digest())
	require.Equal(t, Call{Method: "vote", Args: []byte{1}}.Digest(),
		Call{Method: "vote", Args: []byte{1}}.Digest())
}
