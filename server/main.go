// Command server runs an onet server hosting the ballot enclave service.
package main

import (
	"os"
	"path/filepath"

	"github.com/dedis/ballot/config"
	"github.com/dedis/ballot/enclave"
	"go.dedis.ch/cothority/v3"
	"go.dedis.ch/onet/v3/app"
	"go.dedis.ch/onet/v3/cfgpath"
	"go.dedis.ch/onet/v3/log"
	cli "gopkg.in/urfave/cli.v1"
)

const binaryName = "ballot-server"

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = binaryName
	cliApp.Usage = "host the confidential ballot contract"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: filepath.Join(cfgpath.GetConfigPath(binaryName), app.DefaultServerConfig),
			Usage: "onet server configuration",
		},
		cli.StringFlag{Name: "ballot, b", Usage: "ballot.toml with the enclave settings"},
		cli.IntFlag{Name: "debug, d", Value: 0, Usage: "debug level"},
	}
	cliApp.Before = func(c *cli.Context) error {
		log.SetDebugVisible(c.GlobalInt("debug"))
		return nil
	}
	cliApp.Commands = []cli.Command{
		{
			Name:  "setup",
			Usage: "interactively create the onet server configuration",
			Action: func(c *cli.Context) error {
				app.InteractiveConfig(cothority.Suite, binaryName)
				return nil
			},
		},
		{
			Name:   "run",
			Usage:  "run the server",
			Action: run,
		},
	}
	cliApp.Action = run
	log.ErrFatal(cliApp.Run(os.Args))
}

func run(c *cli.Context) error {
	cfg := config.Default()
	if path := c.GlobalString("ballot"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}
	enclave.SetConfig(cfg.Enclave)
	log.Lvlf1("state key %q in bucket %q, sealed: %t", cfg.Enclave.StateKey,
		cfg.Enclave.Bucket, cfg.Enclave.SealKey != "")
	app.RunServer(c.GlobalString("config"))
	return nil
}
