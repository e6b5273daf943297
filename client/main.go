// Command client talks to a ballot enclave: it creates keys, sends signed
// contract calls and inspects a server database offline.
package main

import (
	"fmt"
	"os"

	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/config"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/enclave"
	"github.com/dedis/ballot/state"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
	cli "gopkg.in/urfave/cli.v1"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "client"
	cliApp.Usage = "call the confidential ballot contract"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "ballot.toml configuration file"},
		cli.IntFlag{Name: "debug, d", Value: 0, Usage: "debug level"},
	}
	cliApp.Before = func(c *cli.Context) error {
		log.SetDebugVisible(c.GlobalInt("debug"))
		return nil
	}
	cliApp.Commands = []cli.Command{
		{
			Name:  "keygen",
			Usage: "create a key pair and store the private key",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out, o", Value: "key.hex", Usage: "output file"},
			},
			Action: keygen,
		},
		{
			Name:      "call",
			Usage:     "send one contract call",
			ArgsUsage: "method (create, add_option, remove_option, open_poll, close_poll, finalize_poll, join_poll, vote, get_total, get_results)",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "roster, r", Usage: "group toml of the servers"},
				cli.StringFlag{Name: "key, k", Usage: "private key file; calls are anonymous without it"},
				cli.StringFlag{Name: "description", Usage: "poll description (create)"},
				cli.IntFlag{Name: "max-votes", Value: 1, Usage: "votes per party (create)"},
				cli.StringFlag{Name: "text, t", Usage: "option text"},
				cli.IntFlag{Name: "index, i", Value: -1, Usage: "option index"},
			},
			Action: call,
		},
		{
			Name:  "inspect",
			Usage: "print the poll stored in a server database",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "db", Usage: "bbolt database of the server"},
				cli.StringFlag{Name: "bucket", Usage: "bucket name, defaults to the one of the enclave service"},
			},
			Action: inspect,
		},
	}
	log.ErrFatal(cliApp.Run(os.Args))
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.GlobalString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func keygen(c *cli.Context) error {
	kp := auth.NewKeyPair()
	if err := writeKey(c.String("out"), kp); err != nil {
		return err
	}
	fmt.Println("public:", kp.Public)
	fmt.Println("party:", partyOf(kp))
	return nil
}

func call(c *cli.Context) error {
	if c.NArg() != 1 {
		return xerrors.New("call needs exactly one method")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rosterFile := c.String("roster")
	if rosterFile == "" {
		rosterFile = cfg.Client.Roster
	}
	roster, err := readRoster(rosterFile)
	if err != nil {
		return err
	}
	keyFile := c.String("key")
	if keyFile == "" {
		keyFile = cfg.Client.KeyFile
	}
	var kp *key.Pair
	if keyFile != "" {
		kp, err = readKey(keyFile)
		if err != nil {
			return err
		}
	}
	op, err := buildOp(c.Args().First(), c.String("description"),
		c.Int("max-votes"), c.String("text"), c.Int("index"))
	if err != nil {
		return err
	}
	cl := enclave.NewClient(roster, cfg.Enclave.StateKey, kp)
	defer cl.Close()
	resp, err := cl.Call(op)
	if err != nil {
		return err
	}
	printResponse(op.Method(), resp)
	return nil
}

func inspect(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path := c.String("db")
	if path == "" {
		path = cfg.Client.DB
	}
	if path == "" {
		return xerrors.New("no database given")
	}
	bucket := c.String("bucket")
	if bucket == "" {
		// onet prefixes additional buckets with the service name.
		bucket = enclave.ServiceName + "_" + cfg.Enclave.Bucket
	}
	bs, err := state.OpenBoltStore(path, bucket)
	if err != nil {
		return err
	}
	defer bs.Close()
	var store state.Store = bs
	sealKey, err := cfg.Enclave.SealKeyBytes()
	if err != nil {
		return err
	}
	if sealKey != nil {
		store, err = state.NewSealedStore(bs, sealKey)
		if err != nil {
			return err
		}
	}
	p, err := contracts.NewContract(store, cfg.Enclave.StateKey).Poll()
	if err != nil {
		return err
	}
	printPoll(p)
	return nil
}
