package main

import (
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/enclave"
	"github.com/dedis/ballot/poll"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/simul/monitor"
	"golang.org/x/xerrors"
)

// BallotSimulation measures how long the enclave takes to set up a poll,
// register voters, accept their votes and tally.
type BallotSimulation struct {
	onet.SimulationBFTree
	Voters   int
	Options  int
	MaxVotes int
}

func init() {
	onet.SimulationRegister("BallotSimulation", NewBallotSimulation)
}

func NewBallotSimulation(config string) (onet.Simulation, error) {
	s := &BallotSimulation{}
	_, err := toml.Decode(config, s)
	if err != nil {
		return nil, err
	}
	if s.Options <= 0 || s.MaxVotes <= 0 {
		return nil, xerrors.New("Options and MaxVotes must be positive")
	}
	return s, nil
}

func (s *BallotSimulation) Setup(dir string,
	hosts []string) (*onet.SimulationConfig, error) {
	sc := &onet.SimulationConfig{}
	s.CreateRoster(sc, hosts, 2000)
	err := s.CreateTree(sc)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *BallotSimulation) Node(config *onet.SimulationConfig) error {
	index, _ := config.Roster.Search(config.Server.ServerIdentity.GetID())
	if index < 0 {
		log.Fatal("Didn't find this node in roster")
	}
	log.Lvl3("Initializing node-index", index)
	return s.SimulationBFTree.Node(config)
}

// nonce feeds every signed call of the simulation; one counter shared by all
// keys is still strictly increasing per key.
var nonce uint64

func call(svc *enclave.Service, kp *key.Pair, op contracts.Op) (*contracts.Response, error) {
	nonce++
	req, err := enclave.NewRequest(kp, svc.Scope(), nonce, op)
	if err != nil {
		return nil, err
	}
	reply, err := svc.Call(req)
	if err != nil {
		return nil, err
	}
	return reply.Result()
}

func (s *BallotSimulation) setup(svc *enclave.Service, owner *key.Pair) error {
	m := monitor.NewTimeMeasure("setup")
	defer m.Record()
	_, err := call(svc, owner, &contracts.Create{Description: "simulation", MaxVotes: s.MaxVotes})
	if err != nil {
		return err
	}
	for i := 0; i < s.Options; i++ {
		_, err = call(svc, owner, &contracts.AddOption{Text: "option " + strconv.Itoa(i)})
		if err != nil {
			return err
		}
	}
	_, err = call(svc, owner, &contracts.OpenPoll{})
	return err
}

func (s *BallotSimulation) Run(config *onet.SimulationConfig) error {
	svc := config.GetService(enclave.ServiceName).(*enclave.Service)
	owner := auth.NewKeyPair()
	if err := s.setup(svc, owner); err != nil {
		return err
	}
	voters := make([]*key.Pair, s.Voters)
	m := monitor.NewTimeMeasure("join")
	for i := range voters {
		voters[i] = auth.NewKeyPair()
		if _, err := call(svc, voters[i], &contracts.JoinPoll{}); err != nil {
			return err
		}
	}
	m.Record()

	// Every round each voter votes for another option, until the vote cap
	// or the options run out.
	rounds := s.Rounds
	if rounds > s.MaxVotes {
		rounds = s.MaxVotes
	}
	if rounds > s.Options {
		rounds = s.Options
	}
	for round := 0; round < rounds; round++ {
		log.Lvl1("Starting round", round)
		m := monitor.NewTimeMeasure("vote")
		for i, kp := range voters {
			sel := poll.AtIndex((i + round) % s.Options)
			if _, err := call(svc, kp, &contracts.Vote{Selector: sel}); err != nil {
				return err
			}
		}
		m.Record()
	}

	m = monitor.NewTimeMeasure("tally")
	resp, err := call(svc, nil, &contracts.GetResults{})
	m.Record()
	if err != nil {
		return err
	}
	if expected := uint64(rounds * s.Voters); resp.Total != expected {
		return xerrors.Errorf("total is %d, expected %d", resp.Total, expected)
	}
	log.Lvl1("Tally:", resp.Results)
	return nil
}
