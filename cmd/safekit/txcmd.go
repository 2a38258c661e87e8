package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/verichains/safekit/safetx"
	"gopkg.in/urfave/cli.v1"
)

var (
	hashCommand = cli.Command{
		Name:      "hash",
		Usage:     "Print the EIP-712 hashes of a Safe transaction",
		ArgsUsage: "<txfile>",
		Action:    hashTx,
	}
	signCommand = cli.Command{
		Name:      "sign",
		Usage:     "Sign a Safe transaction with an owner private key",
		ArgsUsage: "<txfile>",
		Flags:     []cli.Flag{keyFileFlag},
		Action:    signTx,
	}
	aggregateCommand = cli.Command{
		Name:      "aggregate",
		Usage:     "Combine owner signatures into an execution bundle",
		ArgsUsage: "<txfile> <sigfile>...",
		Flags:     []cli.Flag{thresholdFlag},
		Action:    aggregateSigs,
	}
)

func loadJSON(filename string, v interface{}) error {
	blob, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, v)
}

func loadSafeTx(ctx *cli.Context) *safetx.SafeTx {
	if ctx.NArg() < 1 {
		utils.Fatalf("No transaction file given")
	}
	var tx safetx.SafeTx
	if err := loadJSON(ctx.Args().First(), &tx); err != nil {
		utils.Fatalf("Could not load transaction %s: %v", ctx.Args().First(), err)
	}
	if err := tx.Validate(); err != nil {
		utils.Fatalf("Invalid transaction: %v", err)
	}
	return &tx
}

func hashTx(ctx *cli.Context) error {
	tx := loadSafeTx(ctx)
	domainSep, err := tx.DomainSeparator()
	if err != nil {
		return err
	}
	structHash, err := tx.StructHash()
	if err != nil {
		return err
	}
	sighash, err := tx.SigningHash()
	if err != nil {
		return err
	}
	fmt.Printf("Domain separator: %s\n", domainSep.Hex())
	fmt.Printf("Struct hash:      %s\n", structHash.Hex())
	fmt.Printf("Signing hash:     %s\n", sighash.Hex())
	return nil
}

func signTx(ctx *cli.Context) error {
	tx := loadSafeTx(ctx)
	keyFile := ctx.String(keyFileFlag.Name)
	if keyFile == "" {
		utils.Fatalf("No key file given")
	}
	key, err := crypto.LoadECDSA(keyFile)
	if err != nil {
		utils.Fatalf("Could not load private key: %v", err)
	}
	sig, err := safetx.NewKeySigner(key).SignTx(tx)
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(sig, "", "  ")
	fmt.Println(string(out))
	return nil
}

func aggregateSigs(ctx *cli.Context) error {
	tx := loadSafeTx(ctx)
	if ctx.NArg() < 2 {
		utils.Fatalf("No signature files given")
	}
	agg, err := safetx.NewAggregator(tx)
	if err != nil {
		return err
	}
	for _, sigFile := range ctx.Args()[1:] {
		var sig safetx.Signature
		if err := loadJSON(sigFile, &sig); err != nil {
			utils.Fatalf("Could not load signature %s: %v", sigFile, err)
		}
		if err := agg.Add(&sig); err != nil {
			utils.Fatalf("Rejected signature %s: %v", sigFile, err)
		}
	}
	bundle, err := agg.Bundle(ctx.Int(thresholdFlag.Name))
	if err != nil {
		return err
	}
	fmt.Printf("Signers: %d\n", agg.Count())
	for _, signer := range agg.Signers() {
		fmt.Printf("  %s\n", signer.Hex())
	}
	fmt.Printf("Bundle: %s\n", hexutil.Encode(bundle))
	return nil
}
