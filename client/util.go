package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/poll"
	"go.dedis.ch/cothority/v3"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/app"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

func readRoster(path string) (*onet.Roster, error) {
	file, err := os.Open(path)
	if err != nil {
		log.Errorf("ReadRoster error: %v", err)
		return nil, err
	}
	defer file.Close()
	group, err := app.ReadGroupDescToml(file)
	if err != nil {
		log.Errorf("ReadRoster error: %v", err)
		return nil, err
	}
	if group.Roster == nil || len(group.Roster.List) == 0 {
		return nil, xerrors.Errorf("empty roster in %s", path)
	}
	return group.Roster, nil
}

func writeKey(path string, kp *key.Pair) error {
	buf, err := kp.Private.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("marshaling private key: %v", err)
	}
	return ioutil.WriteFile(path, []byte(hex.EncodeToString(buf)+"\n"), 0600)
}

func readKey(path string) (*key.Pair, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading key: %v", err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(buf)))
	if err != nil {
		return nil, xerrors.Errorf("key file is not hex: %v", err)
	}
	priv := cothority.Suite.Scalar()
	if err := priv.UnmarshalBinary(raw); err != nil {
		return nil, xerrors.Errorf("decoding private key: %v", err)
	}
	return &key.Pair{Private: priv, Public: cothority.Suite.Point().Mul(priv, nil)}, nil
}

// buildOp turns the command line arguments of a call into an op.
func buildOp(method string, desc string, maxVotes int, text string, index int) (contracts.Op, error) {
	op, err := contracts.NewOp(contracts.Method(method))
	if err != nil {
		return nil, err
	}
	sel := poll.ByText(text)
	if index >= 0 {
		sel = poll.AtIndex(index)
	}
	switch op := op.(type) {
	case *contracts.Create:
		op.Description = desc
		op.MaxVotes = maxVotes
	case *contracts.AddOption:
		op.Text = text
		op.Index = index
		op.AtIndex = index >= 0
	case *contracts.RemoveOption:
		op.Selector = sel
	case *contracts.Vote:
		op.Selector = sel
	}
	return op, nil
}

func printResponse(m contracts.Method, resp *contracts.Response) {
	switch m {
	case contracts.MethodJoinPoll:
		fmt.Println("joined:", resp.Joined)
	case contracts.MethodGetTotal, contracts.MethodVote:
		fmt.Println("total:", resp.Total)
	case contracts.MethodGetResults:
		printTallies(resp.Results)
		fmt.Println("total:", resp.Total)
	default:
		fmt.Println("ok")
	}
}

func printTallies(ts []poll.Tally) {
	for i, t := range ts {
		fmt.Printf("%3d  %-30s %d\n", i, t.Text, t.Votes)
	}
}

func printPoll(p *poll.Poll) {
	fmt.Println("description:", p.Description)
	fmt.Println("creator:", p.Creator)
	fmt.Println("stage:", p.Stage)
	fmt.Println("max votes per party:", p.MaxVotes)
	fmt.Println("members:", len(p.Members))
	printTallies(p.Results())
	fmt.Println("total:", p.Total())
}

func partyOf(kp *key.Pair) string {
	party, err := auth.PartyOf(kp.Public)
	if err != nil {
		return "?"
	}
	return string(party)
}
