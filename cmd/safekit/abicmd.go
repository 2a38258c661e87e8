package main

import (
	"os"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/verichains/safekit/abiutils"
	"gopkg.in/urfave/cli.v1"
)

var importABIsCommand = cli.Command{
	Name:      "import-abis",
	Usage:     "Import a JSON dump of 4-byte signatures and contract interfaces",
	ArgsUsage: "<dumpfile>",
	Flags:     []cli.Flag{overrideFlag},
	Action:    importABIs,
}

func importABIs(ctx *cli.Context) error {
	config := makeAppConfig(ctx)
	if config.DataDir == "" {
		utils.Fatalf("The import-abis command needs a persistent store, set --%s", dataDirFlag.Name)
	}
	if ctx.NArg() < 1 {
		utils.Fatalf("No ABI dump file given")
	}
	file, err := os.Open(ctx.Args().First())
	if err != nil {
		utils.Fatalf("Could not open ABI dump %s: %v", ctx.Args().First(), err)
	}
	defer file.Close()

	db := makeABIDatabase(config)
	defer db.Close()
	return abiutils.ImportABIsData(db, file, ctx.Bool(overrideFlag.Name))
}
