package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/zera-audit/zera-pipeline/build"
)

var log = logging.Logger("main")

func main() {
	app := &cli.App{
		Name:    "zera-pipeline",
		Usage:   "audit artifact storage commitment and cross-chain attestation daemon",
		Version: build.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the daemon config file",
				Value:   "config.toml",
				EnvVars: []string{"ZERA_PIPELINE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			runCmd,
			configCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%+v", err)
		os.Exit(1)
	}
}
