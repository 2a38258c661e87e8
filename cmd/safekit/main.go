//
// Created on 2024/3/25 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"
)

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app *cli.App
)

func init() {
	app = cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "Gnosis Safe multisig transaction toolkit"
	app.Version = fmt.Sprintf("%s - %s ", gitCommit, gitDate)
	app.Flags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		verbosityFlag,
	}
	app.Commands = []cli.Command{
		hashCommand,
		signCommand,
		aggregateCommand,
		decodeCommand,
		pendingCommand,
		importABIsCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		setupLogger(ctx)
		return nil
	}
}

func setupLogger(ctx *cli.Context) {
	verbosity := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
	handler := log.LvlFilterHandler(verbosity, log.StreamHandler(os.Stderr, log.TerminalFormat(true)))
	log.Root().SetHandler(handler)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
