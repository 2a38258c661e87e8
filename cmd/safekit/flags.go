package main

import (
	"gopkg.in/urfave/cli.v1"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the ABI database",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	rpcUrlFlag = cli.StringFlag{
		Name:  "rpcurl",
		Usage: "Ethereum node RPC url",
	}
	explorerUrlFlag = cli.StringFlag{
		Name:  "explorer",
		Usage: "Etherscan-compatible explorer API url for verified ABI lookups",
	}
	keyFileFlag = cli.StringFlag{
		Name:  "keyfile",
		Usage: "File containing the hex encoded owner private key",
	}
	thresholdFlag = cli.IntFlag{
		Name:  "threshold",
		Usage: "Number of owner signatures required to execute",
		Value: 1,
	}
	chainIdFlag = cli.Uint64Flag{
		Name:  "chainid",
		Usage: "Chain id used when no RPC endpoint is available",
		Value: 1,
	}
	safeFlag = cli.StringFlag{
		Name:  "safe",
		Usage: "Address of the Safe account",
	}
	overrideFlag = cli.BoolFlag{
		Name:  "override",
		Usage: "Overwrite existing ABI entries on import",
	}
)
