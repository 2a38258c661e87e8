package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/verichains/safekit/chain"
	"github.com/verichains/safekit/decode"
	"github.com/verichains/safekit/pending"
	"github.com/verichains/safekit/safetx"
	"gopkg.in/urfave/cli.v1"
)

var (
	decodeCommand = cli.Command{
		Name:      "decode",
		Usage:     "Decode the calldata of a Safe transaction for review",
		ArgsUsage: "<txfile>",
		Flags:     []cli.Flag{rpcUrlFlag, explorerUrlFlag, chainIdFlag},
		Action:    decodeTx,
	}
	pendingCommand = cli.Command{
		Name:      "pending",
		Usage:     "Reconcile a pending pool dump against the on-chain Safe nonce",
		ArgsUsage: "<poolfile>",
		Flags:     []cli.Flag{rpcUrlFlag, safeFlag, thresholdFlag},
		Action:    reconcilePool,
	}
)

// dialClient connects the optional chain client. A nil return means the
// command runs offline with reduced capabilities.
func dialClient(ctx *cli.Context, config *appConfig) *chain.Client {
	if config.Chain.RpcUrl == "" && config.Chain.ExplorerUrl == "" {
		return nil
	}
	client, err := chain.Dial(context.Background(), config.Chain)
	if err != nil {
		utils.Fatalf("Could not connect to chain: %v", err)
	}
	return client
}

func decodeTx(ctx *cli.Context) error {
	config := makeAppConfig(ctx)
	tx := loadSafeTx(ctx)

	var (
		source decode.ABISource
		tokens decode.TokenInfoReader
	)
	if client := dialClient(ctx, config); client != nil {
		defer client.Close()
		if config.Chain.ExplorerUrl != "" {
			source = client
		}
		if config.Chain.RpcUrl != "" {
			tokens = client
		}
	}
	// Writable so fetched verified ABIs persist into the store.
	db := makeABIDatabase(config)
	defer db.Close()
	decoder, err := decode.NewDecoder(db, source, tokens, config.Decoder)
	if err != nil {
		return err
	}

	chainId := ctx.Uint64(chainIdFlag.Name)
	if tx.ChainId != nil {
		chainId = (*big.Int)(tx.ChainId).Uint64()
	}
	var data []byte
	if tx.Data != nil {
		data = *tx.Data
	}
	call := &decode.Call{
		ChainId:   chainId,
		To:        tx.To,
		Value:     (*big.Int)(&tx.Value),
		Data:      data,
		Operation: tx.Operation,
	}
	decoder.Decode(context.Background(), call).Print(os.Stdout)
	return nil
}

func reconcilePool(ctx *cli.Context) error {
	config := makeAppConfig(ctx)
	if ctx.NArg() < 1 {
		utils.Fatalf("No pool file given")
	}
	var entries []*pending.PoolEntry
	if err := loadJSON(ctx.Args().First(), &entries); err != nil {
		utils.Fatalf("Could not load pool dump %s: %v", ctx.Args().First(), err)
	}
	safe, err := safetx.NormalizeAddress(ctx.String(safeFlag.Name))
	if err != nil {
		utils.Fatalf("Invalid safe address %q: %v", ctx.String(safeFlag.Name), err)
	}
	client := dialClient(ctx, config)
	if client == nil {
		utils.Fatalf("The pending command needs an RPC endpoint, set --%s", rpcUrlFlag.Name)
	}
	defer client.Close()

	reconciler := pending.NewReconciler(client)
	result := reconciler.Reconcile(context.Background(), safe, entries, ctx.Int(thresholdFlag.Name))
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}
