//
// Created on 2024/3/21 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package chain

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/verichains/safekit/abiutils"
	"github.com/verichains/safekit/decode"
)

// Well-known selectors the client calls directly.
var (
	nonceId    = abiutils.SigToId("nonce()")
	symbolId   = abiutils.SigToId("symbol()")
	decimalsId = abiutils.SigToId("decimals()")
)

type Config struct {
	RpcUrl         string
	ExplorerUrl    string // etherscan-compatible API endpoint, optional
	ExplorerApiKey string
	CallTimeout    time.Duration
}

var DefaultConfig = Config{
	CallTimeout: 10 * time.Second,
}

func (cfg Config) Sanitize() Config {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig.CallTimeout
	}
	return cfg
}

// contractCaller is the slice of ethclient.Client the read helpers need.
type contractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client reads Safe and token state over JSON-RPC and verified contract
// ABIs over an explorer API. It implements the chain-facing capabilities
// of the decoder and the pool reconciler.
type Client struct {
	cfg    Config
	rpc    *rpc.Client
	caller contractCaller
	http   *http.Client
}

// Dial connects to the JSON-RPC endpoint in cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.Sanitize()
	rpcClient, err := rpc.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("could not dial rpc endpoint: %v", err)
	}
	return &Client{
		cfg:    cfg,
		rpc:    rpcClient,
		caller: ethclient.NewClient(rpcClient),
		http:   &http.Client{Timeout: cfg.CallTimeout},
	}, nil
}

func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// ChainId returns the chain id of the connected endpoint.
func (c *Client) ChainId(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	var result string
	if err := c.rpc.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return 0, err
	}
	chainId, ok := new(big.Int).SetString(result, 0)
	if !ok {
		return 0, fmt.Errorf("malformed chain id %q", result)
	}
	return chainId.Uint64(), nil
}

// call performs an eth_call of the 4-byte selector plus args against addr.
func (c *Client) call(ctx context.Context, addr common.Address, id abiutils.MethodId, args ...byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	data := append(id[:4:4], args...)
	return c.caller.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
}

// SafeNonce reads the Safe contract's own transaction nonce.
func (c *Client) SafeNonce(ctx context.Context, safe common.Address) (uint64, error) {
	ret, err := c.call(ctx, safe, nonceId)
	if err != nil {
		return 0, err
	}
	if len(ret) == 0 {
		return 0, ErrEmptyCallResult
	}
	return new(big.Int).SetBytes(ret).Uint64(), nil
}

// TokenInfo reads an ERC-20 token's symbol and decimals.
func (c *Client) TokenInfo(ctx context.Context, chainId uint64, token common.Address) (*decode.TokenInfo, error) {
	symRet, err := c.call(ctx, token, symbolId)
	if err != nil {
		return nil, err
	}
	symbol, err := unpackSymbol(symRet)
	if err != nil {
		return nil, err
	}
	decRet, err := c.call(ctx, token, decimalsId)
	if err != nil {
		return nil, err
	}
	if len(decRet) == 0 {
		return nil, ErrEmptyCallResult
	}
	return &decode.TokenInfo{
		Symbol:   symbol,
		Decimals: uint8(new(big.Int).SetBytes(decRet).Uint64()),
	}, nil
}

var stringArgs = abi.Arguments{{Type: mustNewType("string")}}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, t, nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// unpackSymbol decodes a symbol() return value. Most tokens return an ABI
// string, a few legacy ones return a raw bytes32.
func unpackSymbol(ret []byte) (string, error) {
	if values, err := stringArgs.UnpackValues(ret); err == nil && len(values) == 1 {
		if symbol, ok := values[0].(string); ok {
			return symbol, nil
		}
	}
	if len(ret) == 32 {
		return string(bytes.TrimRight(ret, "\x00")), nil
	}
	return "", ErrEmptyCallResult
}
